package sim

import (
	"fmt"
	"strings"

	"cyclerc/pkg/memory"
)

// command is a script primitive. max < 0 means variadic.
type command struct {
	min, max int
	usage    string
	fn       func(m *Machine, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":          {1, -1, "(new name...)", cmdNew},
		"clone":        {2, 2, "(clone src dst)", cmdClone},
		"adopt":        {2, 2, "(adopt owner child)", cmdAdopt},
		"edge":         {2, 2, "(edge from to)", cmdEdge},
		"link":         {2, 2, "(link owner child)", cmdLink},
		"release":      {1, -1, "(release name...)", cmdRelease},
		"weak":         {2, 2, "(weak weak handle)", cmdWeak},
		"upgrade":      {2, 2, "(upgrade weak handle)", cmdUpgrade},
		"drop-weak":    {1, -1, "(drop-weak weak...)", cmdDropWeak},
		"strong":       {1, 1, "(strong name)", cmdStrong},
		"alive":        {1, -1, "(alive object...)", cmdAlive},
		"expect-alive": {1, -1, "(expect-alive object...)", cmdExpectAlive},
		"expect-dead":  {1, -1, "(expect-dead object...)", cmdExpectDead},
		"stats":        {0, 0, "(stats)", cmdStats},
		"help":         {0, 0, "(help)", cmdHelp},
	}
}

// Usage returns one usage line per command, sorted by name
func Usage() []string {
	var lines []string
	for _, name := range sortedKeys(commands) {
		lines = append(lines, commands[name].usage)
	}
	return lines
}

// cmdNew creates one object per name together with a handle of the same name
func cmdNew(m *Machine, args []string) error {
	for _, name := range args {
		if _, ok := m.objects[name]; ok || m.bound(name) {
			return fmt.Errorf("%w: %s", ErrBound, name)
		}
		m.handles[name] = memory.NewIn(m.heap, m.newObject(name))
	}
	return nil
}

func cmdClone(m *Machine, args []string) error {
	src, err := m.handle(args[0])
	if err != nil {
		return err
	}
	if m.bound(args[1]) {
		return fmt.Errorf("%w: %s", ErrBound, args[1])
	}
	m.handles[args[1]] = src.Clone()
	return nil
}

func cmdAdopt(m *Machine, args []string) error {
	owner, err := m.handle(args[0])
	if err != nil {
		return err
	}
	child, err := m.handle(args[1])
	if err != nil {
		return err
	}
	owner.Adopt(child)
	return nil
}

// cmdEdge records a reference in the embedder's graph without adopting
func cmdEdge(m *Machine, args []string) error {
	from, err := m.object(args[0])
	if err != nil {
		return err
	}
	to, err := m.object(args[1])
	if err != nil {
		return err
	}
	m.graph.AddEdge(from.id, to.id)
	return nil
}

// cmdLink is edge + adopt between the objects behind two handles
func cmdLink(m *Machine, args []string) error {
	owner, err := m.handle(args[0])
	if err != nil {
		return err
	}
	child, err := m.handle(args[1])
	if err != nil {
		return err
	}
	m.graph.AddEdge(owner.ObjectID(), child.ObjectID())
	owner.Adopt(child)
	return nil
}

func cmdRelease(m *Machine, args []string) error {
	for _, name := range args {
		if h, ok := m.handles[name]; ok {
			delete(m.handles, name)
			h.Release()
			continue
		}
		if w, ok := m.weaks[name]; ok {
			delete(m.weaks, name)
			w.Release()
			continue
		}
		return fmt.Errorf("%w: %s", ErrUnbound, name)
	}
	return nil
}

func cmdWeak(m *Machine, args []string) error {
	if m.bound(args[0]) {
		return fmt.Errorf("%w: %s", ErrBound, args[0])
	}
	h, err := m.handle(args[1])
	if err != nil {
		return err
	}
	m.weaks[args[0]] = h.Downgrade()
	return nil
}

func cmdUpgrade(m *Machine, args []string) error {
	w, ok := m.weaks[args[0]]
	if !ok {
		return fmt.Errorf("%w: weak %s", ErrUnbound, args[0])
	}
	if m.bound(args[1]) {
		return fmt.Errorf("%w: %s", ErrBound, args[1])
	}
	h, ok := w.Upgrade()
	if !ok {
		m.printf("%s: none\n", args[1])
		return nil
	}
	m.handles[args[1]] = h
	m.printf("%s: ok\n", args[1])
	return nil
}

// cmdDropWeak releases weak handles; naming a strong handle is an error
func cmdDropWeak(m *Machine, args []string) error {
	for _, name := range args {
		w, ok := m.weaks[name]
		if !ok {
			return fmt.Errorf("%w: weak %s", ErrUnbound, name)
		}
		delete(m.weaks, name)
		w.Release()
	}
	return nil
}

func cmdStrong(m *Machine, args []string) error {
	name := args[0]
	if h, ok := m.handles[name]; ok {
		m.printf("%s: strong=%d weak=%d links=%d\n", name, h.StrongCount(), h.WeakCount(), h.LinkCount())
		return nil
	}
	if w, ok := m.weaks[name]; ok {
		m.printf("%s: strong=%d\n", name, w.StrongCount())
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnbound, name)
}

func cmdAlive(m *Machine, args []string) error {
	for _, name := range args {
		if _, ok := m.objects[name]; !ok {
			return fmt.Errorf("%w: object %s", ErrUnbound, name)
		}
		state := "alive"
		if m.dead[name] {
			state = "dead"
		}
		m.printf("%s: %s\n", name, state)
	}
	return nil
}

func cmdExpectAlive(m *Machine, args []string) error {
	return expect(m, args, true)
}

func cmdExpectDead(m *Machine, args []string) error {
	return expect(m, args, false)
}

func expect(m *Machine, names []string, alive bool) error {
	var wrong []string
	for _, name := range names {
		if _, ok := m.objects[name]; !ok {
			return fmt.Errorf("%w: object %s", ErrUnbound, name)
		}
		if m.Alive(name) != alive {
			wrong = append(wrong, name)
		}
	}
	if len(wrong) == 0 {
		return nil
	}
	want := "alive"
	if !alive {
		want = "dead"
	}
	return fmt.Errorf("%w: expected %s: %s", ErrExpectation, want, strings.Join(wrong, " "))
}

func cmdStats(m *Machine, _ []string) error {
	s := m.Stats()
	m.printf("live=%d allocated=%d freed=%d destroyed=%d adoptions=%d detections=%d aborted=%d cycles=%d cycle-cells=%d\n",
		m.Live(), s.Allocated, s.Freed, s.Destroyed, s.Adoptions,
		s.Detections, s.DetectionsAborted, s.CyclesCollected, s.CycleCellsCollected)
	return nil
}

func cmdHelp(m *Machine, _ []string) error {
	for _, line := range Usage() {
		m.printf("  %s\n", line)
	}
	return nil
}
