package agent

import "testing"

func cmd(name string, params map[string]interface{}) *Command {
	return &Command{Name: name, Params: params}
}

func TestStallDetector_TripsOnFourthIdentical(t *testing.T) {
	d := &stallDetector{}
	c := cmd("echo", map[string]interface{}{"text": "hi"})
	for i := 0; i < 3; i++ {
		if d.Observe(c) {
			t.Fatalf("detector tripped on occurrence %d", i+1)
		}
	}
	if !d.Observe(c) {
		t.Error("detector did not trip on fourth identical command")
	}
}

func TestStallDetector_DifferentParamsReset(t *testing.T) {
	d := &stallDetector{}
	for i := 0; i < 10; i++ {
		c := cmd("echo", map[string]interface{}{"text": "hi", "n": float64(i)})
		if d.Observe(c) {
			t.Fatalf("detector tripped on distinct command %d", i)
		}
	}
}

func TestStallDetector_DifferentNameResets(t *testing.T) {
	d := &stallDetector{}
	a := cmd("echo", map[string]interface{}{"text": "hi"})
	b := cmd("finish", map[string]interface{}{"text": "hi"})
	d.Observe(a)
	d.Observe(a)
	d.Observe(b)
	for i := 0; i < 3; i++ {
		if d.Observe(a) {
			t.Fatalf("counter survived a reset, tripped at %d", i)
		}
	}
	if !d.Observe(a) {
		t.Error("detector did not trip after fresh run of four")
	}
}

func TestStallDetector_ParamOrderIrrelevant(t *testing.T) {
	d := &stallDetector{}
	a := cmd("echo", map[string]interface{}{"a": 1.0, "b": 2.0})
	b := cmd("echo", map[string]interface{}{"b": 2.0, "a": 1.0})
	d.Observe(a)
	d.Observe(b)
	d.Observe(a)
	if !d.Observe(b) {
		t.Error("structurally equal commands were not treated as identical")
	}
}
