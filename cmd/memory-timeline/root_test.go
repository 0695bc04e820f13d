package main

import "testing"

func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	want := map[string]bool{"serve": false, "migrate": false, "seed": false}
	for _, c := range root.Commands {
		if _, ok := want[c.Name]; ok {
			want[c.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("подкоманда %q не зарегистрирована", name)
		}
	}
	if root.DefaultCommand != "serve" {
		t.Errorf("DefaultCommand = %q, ожидается serve", root.DefaultCommand)
	}
}

func TestSeedCommandFlags(t *testing.T) {
	cmd := newSeedCommand()

	names := map[string]bool{}
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, n := range []string{"count", "reset"} {
		if !names[n] {
			t.Errorf("флаг --%s не объявлен", n)
		}
	}
}
