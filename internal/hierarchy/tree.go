// Package hierarchy строит деревья из плоских списков (id, parent_id) и обходит их.
// Один и тот же код обслуживает департаменты, меню и привилегии.
package hierarchy

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	apperrors "admin-backoffice/pkg/errors"
)

// MaxDepth ограничивает рекурсию: родительский граф не защищён от циклов на уровне БД.
const MaxDepth = 64

// Node - запись самоссылающейся таблицы.
type Node interface {
	NodeID() uint64
	NodeParentID() uint64
	NodeSortOrder() int
}

// Tree - узел с упорядоченными детьми. Поле children в JSON есть только у не-листьев.
type Tree[T Node] struct {
	Node     T
	Children []*Tree[T]
}

// MarshalJSON дописывает children в объект узла, сохраняя порядок его полей.
func (t *Tree[T]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(t.Node)
	if err != nil {
		return nil, err
	}
	if len(t.Children) == 0 {
		return raw, nil
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '{' || raw[len(raw)-1] != '}' {
		return nil, fmt.Errorf("узел дерева должен кодироваться в JSON-объект, получено %.20s", raw)
	}
	children, err := json.Marshal(t.Children)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(raw)+len(children)+len(`,"children":`))
	out = append(out, raw[:len(raw)-1]...)
	if len(raw) > 2 {
		out = append(out, ',')
	}
	out = append(out, `"children":`...)
	out = append(out, children...)
	return append(out, '}'), nil
}

func compareNodes[T Node](a, b T) int {
	if c := cmp.Compare(a.NodeSortOrder(), b.NodeSortOrder()); c != 0 {
		return c
	}
	return cmp.Compare(a.NodeID(), b.NodeID())
}

func groupByParent[T Node](nodes []T) map[uint64][]T {
	byParent := make(map[uint64][]T, len(nodes))
	for _, n := range nodes {
		byParent[n.NodeParentID()] = append(byParent[n.NodeParentID()], n)
	}
	return byParent
}

// Build собирает лес начиная с детей rootParentID. Дети упорядочены по (sort_order, id).
// Узлы, чей родитель отсутствует в списке, в лес не попадают.
func Build[T Node](nodes []T, rootParentID uint64) ([]*Tree[T], error) {
	byParent := groupByParent(nodes)
	for parentID := range byParent {
		slices.SortStableFunc(byParent[parentID], compareNodes[T])
	}
	return expand(byParent, rootParentID, 0)
}

func expand[T Node](byParent map[uint64][]T, parentID uint64, depth int) ([]*Tree[T], error) {
	children := byParent[parentID]
	if len(children) == 0 {
		return nil, nil
	}
	if depth >= MaxDepth {
		return nil, apperrors.ErrHierarchyTooDeep
	}

	forest := make([]*Tree[T], 0, len(children))
	for _, child := range children {
		sub, err := expand(byParent, child.NodeID(), depth+1)
		if err != nil {
			return nil, err
		}
		forest = append(forest, &Tree[T]{Node: child, Children: sub})
	}
	return forest, nil
}

// Flatten - обратная операция к Build, обход в прямом порядке.
func Flatten[T Node](forest []*Tree[T]) []T {
	var list []T
	var walk func(level []*Tree[T])
	walk = func(level []*Tree[T]) {
		for _, t := range level {
			list = append(list, t.Node)
			walk(t.Children)
		}
	}
	walk(forest)
	return list
}
