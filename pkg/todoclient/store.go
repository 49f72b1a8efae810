package todoclient

import "sync"

// State is everything the UI renders. Tasks holds the selected list's tasks.
type State struct {
	Lists          []List
	SelectedListID string
	Tasks          []Task
	Loading        bool
	Error          string
}

// Snapshot is the part of State a failed list delete restores verbatim.
type Snapshot struct {
	Lists          []List
	SelectedListID string
	Tasks          []Task
}

// Action is one state transition understood by Reduce.
type Action interface{ isAction() }

type (
	ListsLoaded struct{ Lists []List }
	AddList     struct{ List List }

	ReconcileList struct {
		TempID string
		List   List
	}

	RollbackList    struct{ TempID string }
	RemoveList      struct{ ID string }
	SelectList      struct{ ID string }
	RestoreSnapshot struct{ Snapshot Snapshot }

	// TasksLoaded is dropped unless ListID is still the selected list, so a
	// slow fetch for a list the user already left cannot overwrite newer state.
	TasksLoaded struct {
		ListID string
		Tasks  []Task
	}

	AddTask struct{ Task Task }

	ReconcileTask struct {
		TempID string
		Task   Task
	}

	RollbackTask struct{ TempID string }
	PatchTask    struct{ Update TaskUpdate }
	RemoveTask   struct{ ID string }
	SetError     struct{ Message string }
	SetLoading   struct{ Loading bool }
)

func (ListsLoaded) isAction()     {}
func (AddList) isAction()         {}
func (ReconcileList) isAction()   {}
func (RollbackList) isAction()    {}
func (RemoveList) isAction()      {}
func (SelectList) isAction()      {}
func (RestoreSnapshot) isAction() {}
func (TasksLoaded) isAction()     {}
func (AddTask) isAction()         {}
func (ReconcileTask) isAction()   {}
func (RollbackTask) isAction()    {}
func (PatchTask) isAction()       {}
func (RemoveTask) isAction()      {}
func (SetError) isAction()        {}
func (SetLoading) isAction()      {}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ListsLoaded:
		s.Lists = cloneLists(a.Lists)
	case AddList:
		// appended; a reload returns lists newest first
		s.Lists = append(cloneLists(s.Lists), a.List)
	case ReconcileList:
		s.Lists = cloneLists(s.Lists)
		for i := range s.Lists {
			if s.Lists[i].ID == a.TempID {
				s.Lists[i] = a.List
			}
		}
		if s.SelectedListID == a.TempID {
			s.SelectedListID = a.List.ID
		}
	case RollbackList:
		s.Lists = filterLists(s.Lists, a.TempID)
	case RemoveList:
		s.Lists = filterLists(s.Lists, a.ID)
		if s.SelectedListID == a.ID {
			s.SelectedListID = ""
			s.Tasks = []Task{}
		}
	case SelectList:
		if s.SelectedListID != a.ID {
			s.SelectedListID = a.ID
			s.Tasks = []Task{}
		}
	case RestoreSnapshot:
		s.Lists = cloneLists(a.Snapshot.Lists)
		s.SelectedListID = a.Snapshot.SelectedListID
		s.Tasks = cloneTasks(a.Snapshot.Tasks)
	case TasksLoaded:
		if a.ListID == s.SelectedListID {
			s.Tasks = cloneTasks(a.Tasks)
		}
	case AddTask:
		out := make([]Task, 0, len(s.Tasks)+1)
		out = append(out, a.Task)
		s.Tasks = append(out, cloneTasks(s.Tasks)...)
	case ReconcileTask:
		s.Tasks = cloneTasks(s.Tasks)
		for i := range s.Tasks {
			if s.Tasks[i].ID == a.TempID {
				s.Tasks[i] = a.Task
			}
		}
	case RollbackTask:
		s.Tasks = filterTasks(s.Tasks, a.TempID)
	case PatchTask:
		s.Tasks = cloneTasks(s.Tasks)
		for i := range s.Tasks {
			if s.Tasks[i].ID == a.Update.ID {
				s.Tasks[i] = a.Update.apply(s.Tasks[i])
			}
		}
	case RemoveTask:
		s.Tasks = filterTasks(s.Tasks, a.ID)
	case SetError:
		s.Error = a.Message
	case SetLoading:
		s.Loading = a.Loading
	}
	return s
}

func cloneLists(in []List) []List {
	return append([]List{}, in...)
}

// cloneTasks copies the slice and each task's subtasks.
func cloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	for i, t := range in {
		t.Subtasks = append([]Subtask{}, t.Subtasks...)
		out[i] = t
	}
	return out
}

func filterLists(in []List, id string) []List {
	out := make([]List, 0, len(in))
	for _, l := range in {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

func filterTasks(in []Task, id string) []Task {
	out := make([]Task, 0, len(in))
	for _, t := range in {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Store serializes Dispatch calls so several goroutines can drive one state.
// Listeners see states in dispatch order: notification happens under dispatchMu,
// so a listener must not call Dispatch itself.
type Store struct {
	dispatchMu sync.Mutex
	mu         sync.Mutex
	state      State
	listeners  []func(State)
}

func NewStore() *Store {
	return &Store{state: State{Lists: []List{}, Tasks: []Task{}}}
}

// Dispatch applies a and notifies listeners with the new state.
func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	st := s.state
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
	return st
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) snapshot() Snapshot {
	st := s.State()
	return Snapshot{
		Lists:          cloneLists(st.Lists),
		SelectedListID: st.SelectedListID,
		Tasks:          cloneTasks(st.Tasks),
	}
}
