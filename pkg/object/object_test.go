package object

import (
	"testing"

	"jscore/pkg/heap"
	"jscore/pkg/shape"
	"jscore/pkg/value"
)

func newTestObject(h *heap.Heap) *Object {
	root := shape.New(h, value.Null)
	return New(h, root, KindPlain)
}

func TestObjectBasicGetSet(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)

	if o.HasOwn(h, "foo") {
		t.Errorf("expected HasOwn(foo) to be false on new object")
	}
	if v, ok := o.GetOwn(h, "foo"); ok {
		t.Errorf("expected GetOwn(foo) ok=false, got ok=true, v=%v", v)
	}

	o.SetOwn(h, nil, "foo", value.Number(42))
	if !o.HasOwn(h, "foo") {
		t.Errorf("expected HasOwn(foo) true after SetOwn")
	}
	v, ok := o.GetOwn(h, "foo")
	if !ok || v.AsNumber() != 42 {
		t.Errorf("GetOwn(foo) = %v, %v, want 42, true", v, ok)
	}

	o.SetOwn(h, nil, "foo", value.Number(7))
	v2, ok2 := o.GetOwn(h, "foo")
	if !ok2 || v2.AsNumber() != 7 {
		t.Errorf("expected overwritten value 7, got %v (ok=%v)", v2, ok2)
	}

	keys := o.OwnKeys(h)
	if len(keys) != 1 || keys[0] != "foo" {
		t.Errorf("OwnKeys() = %v, want [foo]", keys)
	}
}

func TestObjectShapeTransitionsOnSet(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)
	root := o.shape

	o.SetOwn(h, nil, "a", value.Number(1))
	s1 := o.shape
	if s1 == root {
		t.Errorf("expected a new shape after first property")
	}

	o.SetOwn(h, nil, "a", value.Number(2))
	s2 := o.shape
	if s2 != s1 {
		t.Errorf("expected the same shape on overwrite")
	}

	o.SetOwn(h, nil, "b", value.Number(3))
	s3 := o.shape
	if s3 == s2 {
		t.Errorf("expected a new shape after adding a second property")
	}

	keys := o.OwnKeys(h)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("OwnKeys() order = %v, want [a b]", keys)
	}
}

func TestObjectDeleteOwn(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)

	o.SetOwn(h, nil, "x", value.Number(100))
	if !o.DeleteOwn(h, nil, "x") {
		t.Errorf("expected DeleteOwn(x) to return true")
	}
	if o.HasOwn(h, "x") {
		t.Errorf("expected HasOwn(x) false after DeleteOwn")
	}
	if !o.DeleteOwn(h, nil, "x") {
		t.Errorf("expected DeleteOwn on an absent property to return true")
	}
}

func TestObjectDeleteCompactsSlotsKeepingSurvivorValues(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)

	o.SetOwn(h, nil, "x", value.Number(1))
	o.SetOwn(h, nil, "y", value.Number(2))
	o.SetOwn(h, nil, "z", value.Number(3))

	if !o.DeleteOwn(h, nil, "x") {
		t.Fatalf("expected DeleteOwn(x) to succeed")
	}

	keys := o.OwnKeys(h)
	if len(keys) != 2 || keys[0] != "y" || keys[1] != "z" {
		t.Errorf("OwnKeys() = %v, want [y z]", keys)
	}
	y, ok := o.GetOwn(h, "y")
	if !ok || y.AsNumber() != 2 {
		t.Errorf("GetOwn(y) = %v, %v, want 2, true", y, ok)
	}
	z, ok := o.GetOwn(h, "z")
	if !ok || z.AsNumber() != 3 {
		t.Errorf("GetOwn(z) = %v, %v, want 3, true", z, ok)
	}

	o.SetOwn(h, nil, "w", value.Number(4))
	w, ok := o.GetOwn(h, "w")
	if !ok || w.AsNumber() != 4 {
		t.Errorf("GetOwn(w) = %v, %v, want 4, true", w, ok)
	}
}

func TestObjectDeleteNonConfigurableFails(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)

	ok := o.DefineOwnProperty(h, nil, "locked", value.Number(1), shape.PropertyAttributes{
		Writable: true, Enumerable: true, Configurable: false,
	})
	if !ok {
		t.Fatalf("expected DefineOwnProperty to succeed")
	}
	if o.DeleteOwn(h, nil, "locked") {
		t.Errorf("expected DeleteOwn to fail on a non-configurable property")
	}
	if !o.HasOwn(h, "locked") {
		t.Errorf("expected 'locked' to remain after a failed delete")
	}
}

func TestObjectNonWritablePropertyIgnoresSet(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)

	o.DefineOwnProperty(h, nil, "ro", value.Number(1), shape.PropertyAttributes{
		Writable: false, Enumerable: true, Configurable: true,
	})
	o.SetOwn(h, nil, "ro", value.Number(2))
	v, _ := o.GetOwn(h, "ro")
	if v.AsNumber() != 1 {
		t.Errorf("expected non-writable property to stay 1, got %v", v.AsNumber())
	}
}

func TestObjectAccessorProperty(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)

	getter := value.String("getter-fn")
	setter := value.String("setter-fn")
	ok := o.DefineAccessorProperty(h, nil, "prop", getter, setter, true, true, true, true)
	if !ok {
		t.Fatalf("expected DefineAccessorProperty to succeed")
	}

	g, s, found := o.GetOwnAccessor(h, "prop")
	if !found {
		t.Fatalf("expected accessor to be found")
	}
	if !g.StrictlyEquals(getter) || !s.StrictlyEquals(setter) {
		t.Errorf("accessor pair mismatch: got getter=%v setter=%v", g, s)
	}
}

func TestObjectPreventExtensionsBlocksNewProperties(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)
	o.PreventExtensions()

	o.SetOwn(h, nil, "x", value.Number(1))
	if o.HasOwn(h, "x") {
		t.Errorf("expected new property to be rejected once extensions are prevented")
	}
}

func TestObjectIndexedStorage(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)
	o.EnableArrayLength()

	o.SetIndex(0, value.String("a"))
	o.SetIndex(2, value.String("c"))

	if o.ArrayLength() != 3 {
		t.Errorf("ArrayLength() = %d, want 3", o.ArrayLength())
	}
	v, ok := o.GetIndex(1)
	if ok {
		t.Errorf("expected index 1 to be unset, got %v", v)
	}
	keys := o.IndexKeys()
	if len(keys) != 2 || keys[0] != 0 || keys[1] != 2 {
		t.Errorf("IndexKeys() = %v, want [0 2]", keys)
	}
}

func TestObjectSetPrototype(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)
	newProto := value.String("new-proto")
	o.SetPrototype(h, newProto)
	if !o.Prototype().StrictlyEquals(newProto) {
		t.Errorf("expected prototype to change")
	}
}

func TestFromValueRoundTrip(t *testing.T) {
	h := heap.New(nil, 100000)
	o := newTestObject(h)
	v := o.ToValue()
	back, ok := FromValue(v)
	if !ok || back != o {
		t.Errorf("FromValue round-trip failed: ok=%v back=%p want=%p", ok, back, o)
	}
}
