package stats

//SetupFrame is the value of Request.Frame in the setup pass of a command.
const SetupFrame = -1

//Request is what a ComputeCapability gets in each call: the arguments of the
//property (without the command keyword), the dynamic and the frame to compute.
type Request struct {
	Args    []string
	Dynamic Dynamic
	Frame   int

	stats *Stats
	prop  *Property
}

//Setup returns true in the setup pass.
func (R *Request) Setup() bool {
	return R.Frame == SetupFrame
}

//NumFrames returns the number of frames of the dynamic.
func (R *Request) NumFrames() int {
	return R.Dynamic.NumFrames()
}

//Structures resolves the selection tokens into the structures of the property,
//appending them to the ones already set up, and makes all of them the same
//length. It returns the resulting number of structures per selection, which is
//the number of instances the property should have.
func (R *Request) Structures(tokens ...string) (int, error) {
	sd, err := R.stats.ExtractStructures(tokens, R.Dynamic)
	if err != nil {
		return 0, errDecorate(err, "Request.Structures")
	}
	R.prop.Structures = append(R.prop.Structures, sd...)
	n, err := SyncStructureDataLength(R.prop.Structures)
	if err != nil {
		return 0, errDecorate(err, "Request.Structures")
	}
	return n, nil
}

//Select resolves the selection tokens without adding them to the property.
func (R *Request) Select(tokens ...string) ([]StructureData, error) {
	sd, err := R.stats.ExtractStructures(tokens, R.Dynamic)
	return sd, errDecorate(err, "Request.Select")
}

//Property returns the property called name, and records it as
//a dependency of the property being set up.
func (R *Request) Property(name string) (*Property, error) {
	if name == R.prop.name {
		return nil, newError(ErrCycle, "Request.Property", "property %s can't depend on itself", name)
	}
	q := R.stats.Find(name)
	if q == nil {
		return nil, newError(ErrNotFound, "Request.Property", "no property called %s", name)
	}
	if !R.prop.dependsOn(q) {
		R.prop.Dependencies = append(R.prop.Dependencies, q)
	}
	return q, nil
}
