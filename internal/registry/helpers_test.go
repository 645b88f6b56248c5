package registry

import "testing"

// fieldValue returns the coerced value of one field; a missing field reads
// as Absent, same as Get reports it.
func fieldValue(t *testing.T, rec *Record, name string) Value {
	t.Helper()
	v, _ := rec.Get(name)
	return v
}
