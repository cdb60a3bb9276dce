package actuator

import (
	"regexp"
	"sort"

	"github.com/san-kum/artsim/internal/artic"
)

// GroupSpec describes one actuator group before resolution: a joint-name
// pattern plus model selection and parameters. Gains and limits take a
// single scalar (broadcast) or one value per matched joint.
type GroupSpec struct {
	Name    string
	Pattern string
	Model   string

	Stiffness []float64
	Damping   []float64

	EffortLimit   []float64
	VelocityLimit []float64

	// VelocityRamp applies to ideal_pd groups only; see IdealPD.RampTime.
	VelocityRamp float64
}

// Registry holds the resolved actuator groups of one articulation. The
// groups partition the joint index space exactly: every joint claimed
// once, none left over. Violations fail at construction, never at step
// time.
type Registry struct {
	groups []*Group
	byName map[string]*Group
}

// Build resolves specs against the articulation's joint names for a
// batch of the given instance count.
func Build(jointNames []string, instances int, specs []GroupSpec) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Group, len(specs))}
	claimed := make([]string, len(jointNames)) // claiming group name per joint

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, artic.Configf("build registry", "actuator group with empty name")
		}
		if _, dup := r.byName[spec.Name]; dup {
			return nil, artic.Configf("build registry", "duplicate actuator group %q", spec.Name)
		}

		re, err := regexp.Compile("^(?:" + spec.Pattern + ")$")
		if err != nil {
			return nil, artic.Configf("build registry", "group %q: bad joint pattern %q: %v", spec.Name, spec.Pattern, err)
		}

		var joints []int
		for idx, name := range jointNames {
			if !re.MatchString(name) {
				continue
			}
			if claimed[idx] != "" {
				return nil, artic.Configf("build registry",
					"joint %q claimed by both %q and %q", name, claimed[idx], spec.Name)
			}
			claimed[idx] = spec.Name
			joints = append(joints, idx)
		}
		if len(joints) == 0 {
			return nil, artic.Configf("build registry", "group %q: pattern %q matches no joints", spec.Name, spec.Pattern)
		}
		sort.Ints(joints)

		g, err := resolveGroup(spec, joints, instances)
		if err != nil {
			return nil, err
		}
		r.groups = append(r.groups, g)
		r.byName[spec.Name] = g
	}

	for idx, by := range claimed {
		if by == "" {
			return nil, artic.Configf("build registry", "joint %q not claimed by any actuator group", jointNames[idx])
		}
	}

	return r, nil
}

func resolveGroup(spec GroupSpec, joints []int, instances int) (*Group, error) {
	jg := len(joints)

	kp, err := expand(spec.Stiffness, jg, "stiffness")
	if err != nil {
		return nil, err
	}
	kd, err := expand(spec.Damping, jg, "damping")
	if err != nil {
		return nil, err
	}
	el, err := expand(spec.EffortLimit, jg, "effort limit")
	if err != nil {
		return nil, err
	}
	vl, err := expand(spec.VelocityLimit, jg, "velocity limit")
	if err != nil {
		return nil, err
	}

	var model Model
	switch spec.Model {
	case "ideal_pd":
		pd := NewIdealPD(instances)
		pd.RampTime = spec.VelocityRamp
		model = pd
	case "implicit_pd":
		model = NewImplicitPD()
	case "effort":
		model = NewEffortOnly()
	default:
		return nil, artic.Configf("build registry", "group %q: unknown actuator model %q", spec.Name, spec.Model)
	}

	gains := Gains{Stiffness: kp, Damping: kd}
	limits := Limits{Effort: el, Velocity: vl}
	return newGroup(spec.Name, joints, model, gains, limits), nil
}

// Groups returns the resolved groups in spec order.
func (r *Registry) Groups() []*Group { return r.groups }

func (r *Registry) Group(name string) (*Group, bool) {
	g, ok := r.byName[name]
	return g, ok
}

// Reset clears actuator internal state for the given instances across
// all groups; nil means all instances.
func (r *Registry) Reset(instanceIDs []int) {
	for _, g := range r.groups {
		g.model.Reset(instanceIDs)
	}
}

// Advance moves time-dependent actuator state forward by dt.
func (r *Registry) Advance(dt float64) {
	for _, g := range r.groups {
		g.model.Advance(dt)
	}
}
