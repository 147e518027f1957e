package binding

import (
	"reflect"
	"runtime"
	"strings"
	"unicode"
)

// funcIdentity returns the declared name of fn, or "" for closures and
// anything that is not a function. Package paths, receivers and method value
// suffixes are stripped.
func funcIdentity(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}

	name := rf.Name()
	name = strings.TrimSuffix(name, "-fm")
	name = strings.TrimSuffix(name, "[...]")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if isAnonymous(name) {
		return ""
	}
	return name
}

// isAnonymous matches the compiler's closure names: "func1", or a bare
// number for closures nested inside closures.
func isAnonymous(name string) bool {
	if name == "" {
		return true
	}
	digits := strings.TrimPrefix(name, "func")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
