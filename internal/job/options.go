package job

// NodeOption adjusts how an op or graph is placed in a job.
type NodeOption func(*memberSpec)

// As places the unit under alias instead of its own name.
func As(alias string) NodeOption {
	return func(m *memberSpec) { m.alias = alias }
}

// After makes the node wait for the named sibling nodes. Their outputs are
// passed to the node as inputs keyed by the same names.
func After(aliases ...string) NodeOption {
	return func(m *memberSpec) { m.after = append(m.after, aliases...) }
}

// Uses hands the job resource named resource to the node under key.
func Uses(key, resource string) NodeOption {
	return func(m *memberSpec) {
		if m.uses == nil {
			m.uses = map[string]string{}
		}
		m.uses[key] = resource
	}
}
