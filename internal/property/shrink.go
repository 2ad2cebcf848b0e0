package property

import "github.com/cappallo/aura/internal/eval"

// candidates proposes type-directed smaller values for v, per §4.7 step 4.
// Dispatch is purely on v's runtime kind — shrinking needs no declared
// type, only a "simpler" relation on the value itself.
func candidates(v eval.Value) []eval.Value {
	switch val := v.(type) {
	case *eval.IntValue:
		return intCandidates(val.V)
	case *eval.StringValue:
		return stringCandidates(val.V)
	case *eval.ListValue:
		return listCandidates(val.Elements)
	case *eval.ConstructorValue:
		return constructorCandidates(val)
	default:
		return nil
	}
}

func intCandidates(n int) []eval.Value {
	if n == 0 {
		return nil
	}
	out := []eval.Value{&eval.IntValue{V: 0}, &eval.IntValue{V: n / 2}}
	if n > 0 {
		out = append(out, &eval.IntValue{V: n - 1})
	} else {
		out = append(out, &eval.IntValue{V: n + 1})
	}
	return out
}

func stringCandidates(s string) []eval.Value {
	if s == "" {
		return nil
	}
	r := []rune(s)
	out := []eval.Value{&eval.StringValue{V: ""}}
	if len(r) > 1 {
		out = append(out, &eval.StringValue{V: string(r[1:])})
		out = append(out, &eval.StringValue{V: string(r[:len(r)-1])})
		out = append(out, &eval.StringValue{V: string(r[:len(r)/2])})
	}
	return out
}

func listCandidates(elems []eval.Value) []eval.Value {
	if len(elems) == 0 {
		return nil
	}
	out := []eval.Value{&eval.ListValue{Elements: []eval.Value{}}}
	if len(elems) > 1 {
		out = append(out, &eval.ListValue{Elements: append([]eval.Value{}, elems[1:]...)})
		out = append(out, &eval.ListValue{Elements: append([]eval.Value{}, elems[:len(elems)-1]...)})
		out = append(out, &eval.ListValue{Elements: append([]eval.Value{}, elems[:len(elems)/2]...)})
	}
	// Shrink each element in place, one at a time.
	for i, e := range elems {
		for _, ec := range candidates(e) {
			next := append([]eval.Value{}, elems...)
			next[i] = ec
			out = append(out, &eval.ListValue{Elements: next})
		}
	}
	return out
}

func constructorCandidates(c *eval.ConstructorValue) []eval.Value {
	var out []eval.Value
	if c.Tag == "Some" {
		out = append(out, eval.None())
	}
	for _, name := range c.FieldNames {
		fv := c.Fields[name]
		for _, fc := range candidates(fv) {
			fields := make(map[string]eval.Value, len(c.Fields))
			for k, v := range c.Fields {
				fields[k] = v
			}
			fields[name] = fc
			out = append(out, &eval.ConstructorValue{Tag: c.Tag, FieldNames: c.FieldNames, Fields: fields})
		}
	}
	return out
}
