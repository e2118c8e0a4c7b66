package types

import "testing"

func TestSlotKeyEqual(t *testing.T) {
	a := NewSlotKey([]byte("prefix"), []byte("k1"))
	b := NewSlotKey([]byte("prefix"), []byte("k1"))
	c := NewSlotKey([]byte("prefix"), []byte("k2"))

	if !a.Equal(b) {
		t.Fatalf("expected equal keys")
	}
	if a.Equal(c) {
		t.Fatalf("expected different keys")
	}
}

func TestSingletonKey(t *testing.T) {
	k := Singleton([]byte("test"))
	if string(k.Bytes()) != "test" {
		t.Fatalf("got %q", k.Bytes())
	}
}

func TestNamespaceProvable(t *testing.T) {
	cases := map[Namespace]bool{
		User:      true,
		Kernel:    true,
		Accessory: false,
	}
	for ns, want := range cases {
		if got := ns.Provable(); got != want {
			t.Errorf("%s.Provable() = %v, want %v", ns, got, want)
		}
	}
}
