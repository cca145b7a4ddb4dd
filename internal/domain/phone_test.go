package domain

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "bare subscriber", input: "71234567", want: "+26771234567", wantOK: true},
		{name: "plus country code with spaces", input: "+267 71 234 567", want: "+26771234567", wantOK: true},
		{name: "country code", input: "26771234567", want: "+26771234567", wantOK: true},
		{name: "international prefix", input: "0026771234567", want: "+26771234567", wantOK: true},
		{name: "trunk zero", input: "071234567", want: "+26771234567", wantOK: true},
		{name: "dashes and parens", input: "(267) 7123-4567", want: "+26771234567", wantOK: true},
		{name: "zero before country code", input: "026771234567", wantOK: false},
		{name: "too short", input: "12345", wantOK: false},
		{name: "country code short remainder", input: "2677123456", wantOK: false},
		{name: "international prefix long remainder", input: "00267712345678", wantOK: false},
		{name: "empty", input: "", wantOK: false},
		{name: "letters only", input: "phone", wantOK: false},
		{name: "ten digits no prefix", input: "7123456789", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("NormalizePhone(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIsIdempotent(t *testing.T) {
	first, ok := NormalizePhone("71 234 567")
	if !ok {
		t.Fatal("expected first normalization to succeed")
	}
	second, ok := NormalizePhone(first)
	if !ok || second != first {
		t.Errorf("NormalizePhone(%q) = %q, %v; want %q, true", first, second, ok, first)
	}
}
