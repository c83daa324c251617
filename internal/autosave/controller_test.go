package autosave

import (
	"context"
	"sync"
	"testing"
	"time"

	"careernavigator/internal/resume"
)

type captureSaver struct {
	mu    sync.Mutex
	calls []resume.Data
}

func (s *captureSaver) save(_ context.Context, _ uint, data resume.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, data)
	return nil
}

func (s *captureSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *captureSaver) last() resume.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBurstCollapsesToSingleTrailingSave(t *testing.T) {
	saver := &captureSaver{}
	c := NewController(50*time.Millisecond, saver.save, nil)
	defer c.Close()

	for i := 0; i < 10; i++ {
		d := resume.Empty()
		d.FullName = "draft"
		d.Skills = make([]resume.Skill, i)
		c.Notify(7, d)
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, time.Second, func() bool { return saver.count() > 0 })
	// 给潜在的多余保存留出触发时间。
	time.Sleep(120 * time.Millisecond)

	if got := saver.count(); got != 1 {
		t.Fatalf("burst produced %d saves, want 1", got)
	}
	if got := len(saver.last().Skills); got != 9 {
		t.Fatalf("trailing save must carry the latest draft, skills=%d want 9", got)
	}
}

func TestLastSavedTimestampRecorded(t *testing.T) {
	saver := &captureSaver{}
	c := NewController(10*time.Millisecond, saver.save, nil)
	defer c.Close()

	before := time.Now()
	c.Notify(1, resume.Empty())
	waitFor(t, time.Second, func() bool { return saver.count() == 1 })
	waitFor(t, time.Second, func() bool { return !c.Status(1).Saving })

	st := c.Status(1)
	if st.LastSavedAt.Before(before) {
		t.Fatalf("last saved %v should be after %v", st.LastSavedAt, before)
	}
}

func TestFlushSavesImmediately(t *testing.T) {
	saver := &captureSaver{}
	c := NewController(time.Hour, saver.save, nil)
	defer c.Close()

	d := resume.Empty()
	d.FullName = "flush me"
	c.Notify(3, d)
	c.Flush(3)

	waitFor(t, time.Second, func() bool { return saver.count() == 1 })
	if saver.last().FullName != "flush me" {
		t.Fatalf("flushed draft = %+v", saver.last())
	}
}

func TestProfilesDebounceIndependently(t *testing.T) {
	saver := &captureSaver{}
	c := NewController(30*time.Millisecond, saver.save, nil)
	defer c.Close()

	a := resume.Empty()
	a.FullName = "a"
	b := resume.Empty()
	b.FullName = "b"
	c.Notify(1, a)
	c.Notify(2, b)

	waitFor(t, time.Second, func() bool { return saver.count() == 2 })
}

func TestCloseStopsPendingTimers(t *testing.T) {
	saver := &captureSaver{}
	c := NewController(30*time.Millisecond, saver.save, nil)

	c.Notify(1, resume.Empty())
	c.Close()

	time.Sleep(80 * time.Millisecond)
	if got := saver.count(); got != 0 {
		t.Fatalf("closed controller still saved %d times", got)
	}
}
