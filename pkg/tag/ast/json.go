package ast

import "encoding/json"

// JSON encoding tags every node with "type" set to its kind name, so a tree
// can be shipped to an evaluator running outside this process.

func (l *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		ValueType string `json:"value_type"`
		Value     any    `json:"value"`
	}{KindLiteral.String(), l.Type.String(), l.Value()})
}

func (n *BinaryOp) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Op    string `json:"op"`
		Left  Node   `json:"left"`
		Right Node   `json:"right"`
	}{KindBinaryOp.String(), n.Op, n.Left, n.Right})
}

func (n *UnaryOp) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Op      string `json:"op"`
		Operand Node   `json:"operand"`
	}{KindUnaryOp.String(), n.Op, n.Operand})
}

func (n *VarRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}{KindVarRef.String(), n.Name})
}

func (n *VarDecl) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string   `json:"type"`
		Names []string `json:"names"`
	}{KindVarDecl.String(), nonNil(n.Names)})
}

func (n *Assign) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Target Node   `json:"target"`
		Value  Node   `json:"value"`
	}{KindAssign.String(), n.Target, n.Value})
}

func (n *Call) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Callee Node   `json:"callee"`
		Args   []Node `json:"args"`
	}{KindCall.String(), n.Callee, nonNil(n.Args)})
}

func (n *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string `json:"type"`
		Statements []Node `json:"statements"`
	}{KindBlock.String(), nonNil(n.Statements)})
}

func (n *If) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Condition Node   `json:"condition"`
		Body      Node   `json:"body"`
		Else      Node   `json:"else"`
	}{KindIf.String(), n.Condition, n.Body, n.Else})
}

func (n *Return) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value Node   `json:"value"`
	}{KindReturn.String(), n.Value})
}

func (n *For) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Var      string `json:"var"`
		Iterable Node   `json:"iterable"`
		Body     Node   `json:"body"`
	}{KindFor.String(), n.Var, n.Iterable, n.Body})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
