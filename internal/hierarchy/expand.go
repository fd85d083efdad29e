package hierarchy

import (
	"slices"

	apperrors "admin-backoffice/pkg/errors"
)

func indexByID[T Node](nodes []T) map[uint64]T {
	byID := make(map[uint64]T, len(nodes))
	for _, n := range nodes {
		byID[n.NodeID()] = n
	}
	return byID
}

// DescendantIDs возвращает все id поддерева nodeID без самого узла (BFS).
// Неизвестный id даёт пустой результат. Если обход возвращается в nodeID, это цикл.
func DescendantIDs[T Node](nodes []T, nodeID uint64) ([]uint64, error) {
	byParent := groupByParent(nodes)
	for parentID := range byParent {
		slices.SortStableFunc(byParent[parentID], compareNodes[T])
	}

	result := make([]uint64, 0)
	visited := map[uint64]bool{nodeID: true}
	queue := []uint64{nodeID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range byParent[current] {
			id := child.NodeID()
			if id == nodeID {
				return nil, apperrors.ErrHierarchyCycle
			}
			if visited[id] {
				continue
			}
			visited[id] = true
			result = append(result, id)
			queue = append(queue, id)
		}
	}
	return result, nil
}

// AncestorPath возвращает путь от корня до узла включительно (для хлебных крошек).
// Обрыв цепочки на отсутствующем родителе не ошибка: путь начинается с последнего найденного.
func AncestorPath[T Node](nodes []T, nodeID uint64) ([]T, error) {
	byID := indexByID(nodes)
	current, ok := byID[nodeID]
	if !ok {
		return []T{}, nil
	}

	reversed := []T{current}
	seen := map[uint64]bool{nodeID: true}
	for current.NodeParentID() != 0 {
		parent, ok := byID[current.NodeParentID()]
		if !ok {
			break
		}
		if seen[parent.NodeID()] {
			return nil, apperrors.ErrHierarchyCycle
		}
		if len(reversed) >= MaxDepth {
			return nil, apperrors.ErrHierarchyTooDeep
		}
		seen[parent.NodeID()] = true
		reversed = append(reversed, parent)
		current = parent
	}

	path := make([]T, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path, nil
}

// ValidateParent проверяет перенос nodeID под newParentID до записи в БД.
func ValidateParent[T Node](nodes []T, nodeID, newParentID uint64) error {
	if newParentID == 0 {
		return nil
	}
	if newParentID == nodeID {
		return apperrors.ErrSelfParent
	}
	if _, ok := indexByID(nodes)[newParentID]; !ok {
		return apperrors.ErrParentNotFound
	}

	descendants, err := DescendantIDs(nodes, nodeID)
	if err != nil {
		return err
	}
	for _, id := range descendants {
		if id == newParentID {
			return apperrors.ErrParentCycle
		}
	}
	return nil
}
