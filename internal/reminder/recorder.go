package reminder

// Recorder recebe as métricas do scheduler (Prometheus em produção).
type Recorder interface {
	ReminderArmed(n int)
	ReminderCancelled(n int)
	ReminderFired(noteFound bool)
}

type noopRecorder struct{}

func (noopRecorder) ReminderArmed(int)     {}
func (noopRecorder) ReminderCancelled(int) {}
func (noopRecorder) ReminderFired(bool)    {}
