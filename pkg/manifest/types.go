package manifest

// Phase names a request-processing stage a handler chain can be bound to.
type Phase string

const (
	PhaseAccess  Phase = "access"
	PhaseAuthen  Phase = "authen"
	PhaseAuthz   Phase = "authz"
	PhaseFixup   Phase = "fixup"
	PhaseContent Phase = "content"
)

// Phases lists every phase in the order the router runs them.
var Phases = []Phase{PhaseAccess, PhaseAuthen, PhaseAuthz, PhaseFixup, PhaseContent}

func knownPhase(p string) bool {
	for _, x := range Phases {
		if string(x) == p {
			return true
		}
	}
	return false
}
