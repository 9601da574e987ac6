package hostfile

import "testing"

func TestSafeJoin(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		wantErr bool
	}{
		{"plain filename", "basic1.rom", false},
		{"subdirectory", "sub/file.rom", false},
		{"absolute path rejected", "/etc/passwd", true},
		{"parent escape rejected", "../secret", true},
		{"embedded escape rejected", "sub/../../secret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SafeJoin("/tmp/roms", tt.arg)
			if (err != nil) != tt.wantErr {
				t.Errorf("SafeJoin(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
		})
	}
}
