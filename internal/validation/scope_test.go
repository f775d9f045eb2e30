package validation

import "testing"

func TestValidScopeName_Valid(t *testing.T) {
	valids := []string{
		"a",
		"ab",
		"profile",
		"read:data",
		"organizations",
		"a_b-c.d:scope2",
		// 64 chars (start/end alnum)
		mkLen("a", 62) + "b",
	}
	for _, v := range valids {
		if !ValidScopeName(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidScopeName_Invalid(t *testing.T) {
	invalids := []string{
		"",               // empty
		":lead",          // starts with non-alnum
		"trail:",         // ends with non-alnum
		"bad space",      // space
		"UPPER",          // uppercase
		"semicolon;hack", // semicolon
		mkLen("a", 65),   // > 64 chars
	}
	for _, v := range invalids {
		if ValidScopeName(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidEntityID(t *testing.T) {
	if !ValidEntityID("org-1") || !ValidEntityID("aFc2_9") {
		t.Fatal("expected valid ids")
	}
	invalids := []string{"", "has space", "semi;colon", mkLen("a", 129)}
	for _, v := range invalids {
		if ValidEntityID(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

// mkLen builds a string of exactly total characters starting from prefix.
func mkLen(prefix string, total int) string {
	if total <= len(prefix) {
		return prefix[:total]
	}
	out := make([]byte, total)
	copy(out, prefix)
	for i := len(prefix); i < total; i++ {
		out[i] = 'a'
	}
	return string(out)
}
