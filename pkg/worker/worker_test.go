package worker

import (
	"context"
	"testing"
	"time"

	"github.com/audioscript/jsfxgo/pkg/process"
)

func TestWorkerDrainRunsSlotsInFixedOrder(t *testing.T) {
	var order []string
	w := New(Handlers{
		NotifySliders:   func(process.PublishedMasks) { order = append(order, "sliders") },
		InvalidateNames: func() { order = append(order, "names") },
		Load:            func(LoadRequest) error { order = append(order, "load"); return nil },
		Preset:          func(PresetRequest) error { order = append(order, "preset"); return nil },
		PushUndoPoint:   func() { order = append(order, "undopoint") },
		UndoRedo:        func(UndoDirection) { order = append(order, "undoredo") },
	})

	pub := process.PublishedMasks{}
	w.sliderNotify.Store(&pub)
	w.nameInvalidated.Store(true)
	w.loadReq.post(LoadRequest{Path: "a"})
	w.presetReq.post(PresetRequest{Name: "b"})
	w.wantUndoPoint.Store(true)
	w.undoReq.Store(int32(UndoBack))

	w.drain()

	want := []string{"sliders", "names", "load", "preset", "undopoint", "undoredo"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestWorkerDrainSkipsEmptySlots(t *testing.T) {
	calls := 0
	w := New(Handlers{
		NotifySliders: func(process.PublishedMasks) { calls++ },
		Load:          func(LoadRequest) error { calls++; return nil },
	})
	w.drain()
	if calls != 0 {
		t.Fatalf("drain with nothing pending invoked %d handlers, want 0", calls)
	}
}

func TestWorkerRequestLoadUnblocksAfterHandlerRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan LoadRequest, 1)
	w := New(Handlers{
		Load: func(req LoadRequest) error {
			seen <- req
			return nil
		},
	})

	go w.Run(ctx)
	defer w.Stop()

	if err := w.RequestLoad(LoadRequest{Path: "effect.jsfx"}); err != nil {
		t.Fatalf("RequestLoad: %v", err)
	}

	select {
	case req := <-seen:
		if req.Path != "effect.jsfx" {
			t.Fatalf("Load handler got %+v, want Path=effect.jsfx", req)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Load handler was never invoked")
	}
}

func TestWorkerRequestPresetPropagatesHandlerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wantErr := errTest("boom")
	w := New(Handlers{
		Preset: func(PresetRequest) error { return wantErr },
	})

	go w.Run(ctx)
	defer w.Stop()

	if err := w.RequestPreset(PresetRequest{Name: "Lead"}); err != wantErr {
		t.Fatalf("RequestPreset err = %v, want %v", err, wantErr)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
