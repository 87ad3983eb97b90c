package logkit

import (
	"fmt"
	"reflect"
)

// maxDumpDepth bounds recursion into nested values.
const maxDumpDepth = 8

// maxDumpElements bounds how many slice or array elements are logged.
const maxDumpElements = 10

// Dump logs a reflective walk of v at debug severity: struct fields, map
// entries, slice elements, basic values. It is a diagnostics aid and is
// disabled in production. Cycles and excessive depth are cut off.
func (s *Service) Dump(v interface{}) {
	if s == nil || !s.isInitialized.Load() || s.cfg.Production {
		return
	}

	event := func() LogEvent { return s.DebugWith() }
	if v == nil {
		event().Msg("Dump: <nil>")
		return
	}

	visited := make(map[uintptr]bool)
	dumpValue(event, v, emptyString, visited, 0)
}

func dumpValue(event func() LogEvent, v interface{}, prefix string, visited map[uintptr]bool, depth int) {
	if depth > maxDumpDepth {
		event().Msgf("%s: <max depth reached>", prefix)
		return
	}
	if v == nil {
		event().Msgf("%s: <nil>", prefix)
		return
	}

	val := reflect.ValueOf(v)

	// Unwrap interfaces and pointers with cycle detection.
	for {
		switch val.Kind() {
		case reflect.Interface:
			if val.IsNil() {
				event().Msgf("%s: <nil>", prefix)
				return
			}
			val = val.Elem()
			continue
		case reflect.Ptr:
			if val.IsNil() {
				event().Msgf("%s: <nil>", prefix)
				return
			}
			ptr := val.Pointer()
			if visited[ptr] {
				event().Msgf("%s: <circular reference>", prefix)
				return
			}
			visited[ptr] = true
			val = val.Elem()
		default:
		}
		break
	}

	typ := val.Type()

	switch val.Kind() {
	case reflect.Struct:
		if prefix == emptyString {
			event().Msgf("Struct: %s", typ.Name())
		} else {
			event().Msgf("%s: %s {", prefix, typ.Name())
		}
		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			if !field.CanInterface() {
				continue
			}
			name := typ.Field(i).Name
			if prefix != emptyString {
				name = prefix + "." + name
			}
			dumpValue(event, field.Interface(), name, visited, depth+1)
		}
		if prefix != emptyString {
			event().Msgf("%s: }", prefix)
		}

	case reflect.Map:
		event().Msgf("%s: map[%s]%s (len: %d) {",
			prefix, typ.Key().String(), typ.Elem().String(), val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			dumpValue(event, iter.Value().Interface(), prefix+"["+key+"]", visited, depth+1)
		}
		event().Msgf("%s: }", prefix)

	case reflect.Slice, reflect.Array:
		event().Msgf("%s: %s (len: %d) {", prefix, typ.String(), val.Len())
		for i := 0; i < val.Len() && i < maxDumpElements; i++ {
			elem := val.Index(i)
			if !elem.CanInterface() {
				continue
			}
			dumpValue(event, elem.Interface(), fmt.Sprintf("%s[%d]", prefix, i), visited, depth+1)
		}
		if val.Len() > maxDumpElements {
			event().Msgf("%s: ... (%d more elements)", prefix, val.Len()-maxDumpElements)
		}
		event().Msgf("%s: }", prefix)

	default:
		if val.IsValid() && val.CanInterface() {
			event().Msgf("%s: %v", prefix, val.Interface())
		} else {
			event().Msgf("%s: %v", prefix, v)
		}
	}
}
