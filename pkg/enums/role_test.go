package enums

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"buyer", "seller", "admin"} {
		role, err := ParseRole(valid)
		if err != nil {
			t.Fatalf("expected %q to parse, got %v", valid, err)
		}
		if role.String() != valid {
			t.Fatalf("expected %q, got %q", valid, role.String())
		}
	}

	if _, err := ParseRole("superuser"); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
	if _, err := ParseRole(""); err == nil {
		t.Fatalf("expected empty role to fail")
	}
}

func TestIsSelfRegisterable(t *testing.T) {
	if !RoleBuyer.IsSelfRegisterable() || !RoleSeller.IsSelfRegisterable() {
		t.Fatalf("buyer and seller must be self-registerable")
	}
	if RoleAdmin.IsSelfRegisterable() {
		t.Fatalf("admin must not be self-registerable")
	}
	if Role("superuser").IsSelfRegisterable() {
		t.Fatalf("unknown roles must not be self-registerable")
	}
}
