// HCL documents map onto generic trees as follows. Root attributes and blocks
// become mapping entries in source order. A block becomes a nested mapping
// under its type; labels add one mapping level each, so `layer "l1" { ... }`
// lands under ["layer"]["l1"]. Object and tuple constructors are walked in
// source order so key order survives. Every other expression is evaluated
// with a small function library and converted from cty.

package document

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

type hclCodec struct{}

// evalContext exposes the functions documents may call.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"max":    stdlib.MaxFunc,
			"min":    stdlib.MinFunc,
			"concat": stdlib.ConcatFunc,
			"length": stdlib.LengthFunc,
			"join":   stdlib.JoinFunc,
			"format": stdlib.FormatFunc,
		},
	}
}

func (hclCodec) decode(src []byte, filename string) (any, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected body type %T", file.Body)
	}
	return decodeBody(body, evalContext())
}

type bodyItem struct {
	start int
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

func decodeBody(body *hclsyntax.Body, ctx *hcl.EvalContext) (*orderedmap.OrderedMap[string, any], error) {
	items := make([]bodyItem, 0, len(body.Attributes)+len(body.Blocks))
	for _, attr := range body.Attributes {
		items = append(items, bodyItem{start: attr.SrcRange.Start.Byte, attr: attr})
	}
	for _, block := range body.Blocks {
		items = append(items, bodyItem{start: block.TypeRange.Start.Byte, block: block})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].start < items[j].start })

	out := orderedmap.New[string, any](len(items))
	for _, item := range items {
		if item.attr != nil {
			v, err := decodeExpr(item.attr.Expr, ctx)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", item.attr.Name, err)
			}
			out.Set(item.attr.Name, v)
			continue
		}
		if err := decodeBlock(out, item.block, ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeBlock(parent *orderedmap.OrderedMap[string, any], block *hclsyntax.Block, ctx *hcl.EvalContext) error {
	content, err := decodeBody(block.Body, ctx)
	if err != nil {
		return fmt.Errorf("block %q: %w", block.Type, err)
	}

	keys := append([]string{block.Type}, block.Labels...)
	target := parent
	for _, k := range keys[:len(keys)-1] {
		existing, ok := target.Get(k)
		if !ok {
			child := orderedmap.New[string, any]()
			target.Set(k, child)
			target = child
			continue
		}
		child, ok := existing.(*orderedmap.OrderedMap[string, any])
		if !ok {
			return fmt.Errorf("block %q: %q is already defined as a value", block.Type, k)
		}
		target = child
	}

	last := keys[len(keys)-1]
	if _, exists := target.Get(last); exists {
		return fmt.Errorf("%s: duplicate block %q", block.TypeRange, last)
	}
	target.Set(last, content)
	return nil
}

func decodeExpr(expr hclsyntax.Expression, ctx *hcl.EvalContext) (any, error) {
	switch e := expr.(type) {
	case *hclsyntax.ObjectConsExpr:
		out := orderedmap.New[string, any](len(e.Items))
		for _, item := range e.Items {
			kv, diags := item.KeyExpr.Value(ctx)
			if diags.HasErrors() {
				return nil, diags
			}
			ks, err := convert.Convert(kv, cty.String)
			if err != nil || ks.IsNull() || !ks.IsKnown() {
				return nil, fmt.Errorf("%s: object key must be a string", item.KeyExpr.Range())
			}
			v, err := decodeExpr(item.ValueExpr, ctx)
			if err != nil {
				return nil, err
			}
			out.Set(ks.AsString(), v)
		}
		return out, nil

	case *hclsyntax.TupleConsExpr:
		out := make([]any, 0, len(e.Exprs))
		for _, elem := range e.Exprs {
			v, err := decodeExpr(elem, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	v, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyToNative(v)
}

// ctyToNative converts an evaluated value into the generic tree form. Numbers
// that are whole and fit in an int64 stay integers.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("converting number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, fmt.Errorf("converting bool: %w", err)
		}
		return b, nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			native, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		// cty iterates attributes in lexical order.
		out := orderedmap.New[string, any](v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			native, err := ctyToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", k.AsString(), err)
			}
			out.Set(k.AsString(), native)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

func (hclCodec) encode(tree any) ([]byte, error) {
	root, ok := tree.(*orderedmap.OrderedMap[string, any])
	if !ok {
		return nil, fmt.Errorf("%w: HCL documents need a mapping at the root, got %T", ErrUnencodable, tree)
	}

	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for pair := root.Oldest(); pair != nil; pair = pair.Next() {
		if !hclsyntax.ValidIdentifier(pair.Key) {
			return nil, fmt.Errorf("%w: %q is not a valid HCL attribute name", ErrUnencodable, pair.Key)
		}
		tokens, err := tokensFor(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", pair.Key, err)
		}
		body.SetAttributeRaw(pair.Key, tokens)
	}
	return hclwrite.Format(f.Bytes()), nil
}

func tokensFor(v any) (hclwrite.Tokens, error) {
	switch t := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		attrs := make([]hclwrite.ObjectAttrTokens, 0, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			value, err := tokensFor(pair.Value)
			if err != nil {
				return nil, err
			}
			name := hclwrite.TokensForValue(cty.StringVal(pair.Key))
			if hclsyntax.ValidIdentifier(pair.Key) {
				name = hclwrite.TokensForIdentifier(pair.Key)
			}
			attrs = append(attrs, hclwrite.ObjectAttrTokens{Name: name, Value: value})
		}
		return hclwrite.TokensForObject(attrs), nil

	case []any:
		elems := make([]hclwrite.Tokens, 0, len(t))
		for _, e := range t {
			tokens, err := tokensFor(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, tokens)
		}
		return hclwrite.TokensForTuple(elems), nil
	}

	cv, err := scalarToCty(v)
	if err != nil {
		return nil, err
	}
	return hclwrite.TokensForValue(cv), nil
}

func scalarToCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case json.Number:
		return cty.ParseNumberVal(t.String())
	}
	return cty.NilVal, fmt.Errorf("%w: %T has no HCL form", ErrUnencodable, v)
}
