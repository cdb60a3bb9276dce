package actuator

// Group binds an ordered set of joint indices to a model and its
// parameters. The binding is immutable after construction except for
// the gains, which may be hot-swapped between steps.
type Group struct {
	name   string
	joints []int
	model  Model
	gains  Gains
	limits Limits
}

func (g *Group) Name() string { return g.name }

func (g *Group) Model() Model { return g.model }

// Joints returns the governed articulation joint indices in ascending
// order. The slice is owned by the group; callers must not mutate it.
func (g *Group) Joints() []int { return g.joints }

func (g *Group) Gains() Gains { return g.gains }

func (g *Group) Limits() Limits { return g.limits }

// SetGains replaces the group's stiffness and damping. Values broadcast
// from a single scalar or match the group's joint count. Must only be
// called between steps.
func (g *Group) SetGains(stiffness, damping []float64) error {
	kp, err := expand(stiffness, len(g.joints), "stiffness")
	if err != nil {
		return err
	}
	kd, err := expand(damping, len(g.joints), "damping")
	if err != nil {
		return err
	}
	g.gains = Gains{Stiffness: kp, Damping: kd}
	return nil
}

func newGroup(name string, joints []int, model Model, gains Gains, limits Limits) *Group {
	return &Group{name: name, joints: joints, model: model, gains: gains, limits: limits}
}
