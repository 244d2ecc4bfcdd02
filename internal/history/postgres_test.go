package history

import "testing"

func TestGroupRowsReassemblesMultiPartMessages(t *testing.T) {
	rows := []historyRow{
		{msgSeq: 0, role: "user", body: "hello"},
		{msgSeq: 1, role: "model", body: "first thought"},
		{msgSeq: 1, role: "model", body: "second thought"},
		{msgSeq: 3, role: "user", body: "bye"},
	}

	msgs := groupRows(rows)
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}
	if msgs[0].Role != "user" || len(msgs[0].Parts) != 1 || msgs[0].Parts[0].Text != "hello" {
		t.Fatalf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Role != "model" || len(msgs[1].Parts) != 2 {
		t.Fatalf("model message not regrouped: %+v", msgs[1])
	}
	if msgs[1].Parts[0].Text != "first thought" || msgs[1].Parts[1].Text != "second thought" {
		t.Fatalf("part order lost: %+v", msgs[1].Parts)
	}
	if msgs[2].Parts[0].Text != "bye" {
		t.Fatalf("msgs[2] = %+v", msgs[2])
	}
}

func TestGroupRowsEmpty(t *testing.T) {
	if msgs := groupRows(nil); len(msgs) != 0 {
		t.Fatalf("groupRows(nil) = %v, want empty", msgs)
	}
}
