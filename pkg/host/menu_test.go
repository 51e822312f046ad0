package host

import "testing"

func TestParseMenuAssignsSequentialIDsToItems(t *testing.T) {
	insns := ParseMenu("One|Two|Three")
	if len(insns) != 3 {
		t.Fatalf("len = %d, want 3", len(insns))
	}
	for i, want := range []string{"One", "Two", "Three"} {
		if insns[i].Opcode != MenuItem || insns[i].Name != want || insns[i].ID != uint32(i+1) {
			t.Fatalf("insns[%d] = %+v, want item %q id %d", i, insns[i], want, i+1)
		}
	}
}

func TestParseMenuEmptyEntryIsSeparator(t *testing.T) {
	insns := ParseMenu("One||Two")
	if len(insns) != 3 {
		t.Fatalf("len = %d, want 3", len(insns))
	}
	if insns[1].Opcode != MenuSeparator {
		t.Fatalf("insns[1] = %+v, want separator", insns[1])
	}
	if insns[2].ID != 2 {
		t.Fatalf("separator should not consume an id: insns[2].ID = %d, want 2", insns[2].ID)
	}
}

func TestParseMenuDisabledAndCheckedFlags(t *testing.T) {
	insns := ParseMenu("#Disabled|!Checked|#!Both")
	if insns[0].Flags != MenuItemDisabled {
		t.Fatalf("insns[0].Flags = %v, want disabled", insns[0].Flags)
	}
	if insns[1].Flags != MenuItemChecked {
		t.Fatalf("insns[1].Flags = %v, want checked", insns[1].Flags)
	}
	if insns[2].Flags != MenuItemDisabled|MenuItemChecked {
		t.Fatalf("insns[2].Flags = %v, want disabled|checked", insns[2].Flags)
	}
	if insns[0].Name != "Disabled" || insns[1].Name != "Checked" || insns[2].Name != "Both" {
		t.Fatalf("flag markers were not stripped from names: %+v", insns)
	}
}

func TestParseMenuSubmenuOpensAndCloses(t *testing.T) {
	insns := ParseMenu("Top|>Sub|Inner1|Inner2|<Last|After")
	wantOpcodes := []MenuOpcode{MenuItem, MenuSub, MenuItem, MenuItem, MenuEndSub, MenuItem}
	if len(insns) != len(wantOpcodes) {
		t.Fatalf("len = %d, want %d: %+v", len(insns), len(wantOpcodes), insns)
	}
	for i, op := range wantOpcodes {
		if insns[i].Opcode != op {
			t.Fatalf("insns[%d].Opcode = %v, want %v (%+v)", i, insns[i].Opcode, op, insns)
		}
	}
	if insns[1].Name != "Sub" {
		t.Fatalf("submenu name = %q, want Sub", insns[1].Name)
	}
	if insns[4].Name != "Last" || insns[4].ID == 0 {
		t.Fatalf("closing item = %+v, want named Last with a nonzero id", insns[4])
	}
}

func TestParseMenuEmptyClosingMarkerGetsNoID(t *testing.T) {
	insns := ParseMenu(">Sub|Item|<")
	last := insns[len(insns)-1]
	if last.Opcode != MenuEndSub || last.ID != 0 {
		t.Fatalf("bare close = %+v, want MenuEndSub with id 0", last)
	}
}
