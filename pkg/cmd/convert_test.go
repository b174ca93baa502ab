package cmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_SplitPlusArgs_Mixed(t *testing.T) {
	opts, files, err := SplitPlusArgs([]string{
		"a.sv",
		"+define+WIDTH=8",
		"+define+SYNTHESIS",
		"+incdir+rtl/include",
		"b.sv",
	})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a.sv", "b.sv"}, files); diff != "" {
		t.Errorf("file arguments mismatch (-want +got):\n%s", diff)
	}

	wantDefines := map[string]string{"WIDTH": "8", "SYNTHESIS": ""}
	if diff := cmp.Diff(wantDefines, opts.Defines); diff != "" {
		t.Errorf("defines mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"rtl/include"}, opts.IncDirs); diff != "" {
		t.Errorf("incdirs mismatch (-want +got):\n%s", diff)
	}
}

func Test_SplitPlusArgs_UnknownOption(t *testing.T) {
	if _, _, err := SplitPlusArgs([]string{"+bogus+x"}); err == nil {
		t.Error("unknown plus-option accepted")
	}
}

func Test_SplitPlusArgs_EmptyDefine(t *testing.T) {
	if _, _, err := SplitPlusArgs([]string{"+define+"}); err == nil {
		t.Error("empty +define+ accepted")
	}
}
