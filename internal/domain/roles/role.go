package roles

import "strings"

type Role string

const (
	Intern     Role = "INTERN"
	Employee   Role = "EMPLOYEE"
	Manager    Role = "MANAGER"
	Admin      Role = "ADMIN"
	SuperAdmin Role = "SUPER_ADMIN"
)

// ladder is ordered from least to most privileged.
var ladder = [...]Role{Intern, Employee, Manager, Admin, SuperAdmin}

var aliases = map[string]Role{
	"super_administrator": SuperAdmin,
	"superadmin":          SuperAdmin,
	"administrator":       Admin,
}

// Ladder returns a copy of the role ladder, lowest rank first.
func Ladder() []Role {
	out := make([]Role, len(ladder))
	copy(out, ladder[:])
	return out
}

// Rank returns the ladder position of r, or -1 when r is not a known role.
func (r Role) Rank() int {
	for i, candidate := range ladder {
		if candidate == r {
			return i
		}
	}
	return -1
}

func (r Role) Valid() bool {
	return r.Rank() >= 0
}

func (r Role) String() string {
	return string(r)
}

// Normalize maps the spellings accepted at the system boundary ("Admin",
// "super_admin", "Super Administrator", ...) onto the canonical Role.
func Normalize(raw string) (Role, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		return "", false
	}
	if role, ok := aliases[key]; ok {
		return role, true
	}
	role := Role(strings.ToUpper(key))
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// Next returns the role one rank above r. It reports false for SUPER_ADMIN
// and for unrecognized roles.
func Next(r Role) (Role, bool) {
	rank := r.Rank()
	if rank < 0 || rank == len(ladder)-1 {
		return "", false
	}
	return ladder[rank+1], true
}

// Previous returns the role one rank below r. SUPER_ADMIN never steps down
// through this path; it only leaves the role through a transfer.
func Previous(r Role) (Role, bool) {
	rank := r.Rank()
	if rank <= 0 || r == SuperAdmin {
		return "", false
	}
	return ladder[rank-1], true
}
