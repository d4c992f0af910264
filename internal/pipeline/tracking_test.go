package pipeline

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestTracker_Stages(t *testing.T) {
	var logs bytes.Buffer
	tr := NewTracker("t-1", log.New(&logs, "", 0))

	tr.StartStage(StageLoad)
	tr.EndStage(StageLoad, 3, nil)
	tr.StartStage(StageFetch)
	tr.EndStage(StageFetch, 0, errors.New("remote down"))
	tr.EndStage("unknown", 1, nil)
	tr.Finish(errors.New("remote down"))

	stages := tr.Stages()
	if len(stages) != 2 {
		t.Fatalf("got %d stages, want 2", len(stages))
	}
	if stages[0].StageName != StageLoad || stages[0].RecordsProcessed != 3 || stages[0].Failed {
		t.Errorf("unexpected load stage %+v", stages[0])
	}
	if !stages[1].Failed || stages[1].EndTime.IsZero() {
		t.Errorf("unexpected fetch stage %+v", stages[1])
	}
	for _, want := range []string{"[TASK t-1]", "remote down", "failed in"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("log missing %q:\n%s", want, logs.String())
		}
	}
}
