package task

// Builder configures a Task during registration. Every method returns the
// same builder so calls can be chained. No cross-task validation happens
// here; unknown dependencies surface when the graph is resolved.
type Builder struct {
	task *Task
}

// NewBuilder creates a task with the given name and registration index.
// Registries call it; user code receives the builder from Register.
func NewBuilder(name string, index int) *Builder {
	return &Builder{task: &Task{name: name, index: index}}
}

// Task returns the task being configured.
func (b *Builder) Task() *Task { return b.task }

// Description sets the free-text description.
func (b *Builder) Description(text string) *Builder {
	b.task.description = text
	return b
}

// IsDependentOn adds dependencies. A name already present, compared
// case-insensitively, is ignored.
func (b *Builder) IsDependentOn(names ...string) *Builder {
	for _, name := range names {
		if b.hasDependency(name) {
			continue
		}
		b.task.dependencies = append(b.task.dependencies, name)
	}
	return b
}

func (b *Builder) hasDependency(name string) bool {
	key := Key(name)
	for _, existing := range b.task.dependencies {
		if Key(existing) == key {
			return true
		}
	}
	return false
}

// WithCriteria appends a run condition. Criteria accumulate; all of them
// must hold for the task to run.
func (b *Builder) WithCriteria(pred Predicate, message string) *Builder {
	b.task.criteria = append(b.task.criteria, Criterion{Predicate: pred, Message: message})
	return b
}

// When appends a boolean run condition without a message. It shares the
// ordered criteria list with WithCriteria.
func (b *Builder) When(pred Predicate) *Builder {
	return b.WithCriteria(pred, "")
}

// Does appends actions.
func (b *Builder) Does(actions ...Action) *Builder {
	for _, a := range actions {
		if a != nil {
			b.task.actions = append(b.task.actions, a)
		}
	}
	return b
}

// ContinueOnError makes action errors non-fatal for this task.
func (b *Builder) ContinueOnError() *Builder {
	b.task.continueOnError = true
	return b
}

// OnError sets the error handler, replacing any previous one.
func (b *Builder) OnError(h ErrorHandler) *Builder {
	b.task.errorHandler = h
	return b
}

// Finally sets the finally handler, replacing any previous one.
func (b *Builder) Finally(h FinallyHandler) *Builder {
	b.task.finally = h
	return b
}
