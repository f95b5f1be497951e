package profile

import "testing"

func TestRoleHome(t *testing.T) {
	cases := map[Role]string{
		RoleManager:  "/manager",
		RoleEmployee: "/employee",
		RoleNone:     "/employee",
	}
	for role, want := range cases {
		if got := role.Home(); got != want {
			t.Fatalf("Role(%q).Home() = %q, want %q", role, got, want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleManager.Valid() || !RoleEmployee.Valid() {
		t.Fatalf("expected manager and employee to be valid")
	}
	if RoleNone.Valid() || Role("admin").Valid() {
		t.Fatalf("expected unset and unknown roles to be invalid")
	}
}
