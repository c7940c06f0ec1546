package truth

import "fmt"

// Policy controls how a non-fatal discrepancy (missing truth file, index
// mismatch) is handled. The zero value is PolicyWarn.
type Policy int

const (
	// PolicyWarn records the condition and emits a diagnostic, then continues.
	PolicyWarn Policy = iota
	// PolicyError raises immediately.
	PolicyError
	// PolicyIgnore continues silently.
	PolicyIgnore
)

// ParsePolicy validates a policy name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "warn":
		return PolicyWarn, nil
	case "error":
		return PolicyError, nil
	case "ignore":
		return PolicyIgnore, nil
	}
	return 0, fmt.Errorf("invalid policy %q, allowed values: error, ignore, warn", name)
}

func (p Policy) String() string {
	switch p {
	case PolicyWarn:
		return "warn"
	case PolicyError:
		return "error"
	case PolicyIgnore:
		return "ignore"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}
