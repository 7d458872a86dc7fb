package validate

import "testing"

func TestCompose(t *testing.T) {
	v := Compose(Required(), MinLength(3), MaxLength(5))

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "abcd", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too short", "ab", true},
		{"too long", "abcdef", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v(tc.value)
			if (err != nil) != tc.wantErr {
				t.Fatalf("value %q: wantErr=%v, got %v", tc.value, tc.wantErr, err)
			}
		})
	}
}

func TestOneOf(t *testing.T) {
	v := OneOf("gridfs", "memory")

	if err := v("gridfs"); err != nil {
		t.Fatalf("expected gridfs to pass, got %v", err)
	}
	if err := v("s3"); err == nil {
		t.Fatal("expected s3 to fail")
	}
}

func TestMatches(t *testing.T) {
	v := Matches(`^https?://`, "must include a scheme")

	if err := v("http://localhost:5173"); err != nil {
		t.Fatalf("expected url to pass, got %v", err)
	}
	if err := v("localhost:5173"); err == nil {
		t.Fatal("expected schemeless value to fail")
	}
}
