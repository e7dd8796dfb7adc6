package auth

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"patient", RolePatient, false},
		{"Doctor", RoleDoctor, false},
		{"  ADMINISTRATOR ", RoleAdministrator, false},
		{"admin", RoleAdministrator, false},
		{"nurse", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoles_AllValid(t *testing.T) {
	roles := Roles()
	if len(roles) != 3 {
		t.Fatalf("expected 3 roles, got %d", len(roles))
	}
	for _, r := range roles {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}
	if Role("receptionist").Valid() {
		t.Error("unexpected valid role receptionist")
	}
}
