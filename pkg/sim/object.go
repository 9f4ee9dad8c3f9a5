package sim

import "cyclerc/pkg/memory"

// Object is a value managed by the simulator. It implements
// memory.Reachable through the machine's Graph and memory.Dropper to
// observe its own destruction.
type Object struct {
	id     memory.ObjectID
	name   string
	graph  *Graph
	onDrop func(*Object)
}

// Name returns the script name of the object
func (o *Object) Name() string {
	return o.name
}

// ObjectID returns the id assigned when the object was created
func (o *Object) ObjectID() memory.ObjectID {
	return o.id
}

// CanReach reports whether the machine's graph has a path from o to target
func (o *Object) CanReach(target memory.ObjectID) bool {
	return o.graph.Reaches(o.id, target)
}

// Drop forgets the object's outgoing edges; a destroyed value no longer
// references anything.
func (o *Object) Drop() {
	o.graph.RemoveEdges(o.id)
	if o.onDrop != nil {
		o.onDrop(o)
	}
}
