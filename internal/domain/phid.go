package domain

import "strings"

const (
	PHIDTypeUser    = "USER"
	PHIDTypeProject = "PROJ"
	PHIDTypeRepo    = "REPO"
)

// PHIDType достает тип объекта из PHID вида "PHID-USER-abcd"
func PHIDType(phid string) string {
	parts := strings.SplitN(phid, "-", 3)
	if len(parts) < 3 || parts[0] != "PHID" {
		return ""
	}
	return parts[1]
}

// IsIndividualPHID true для ревьюера-человека, false для группы/проекта
func IsIndividualPHID(phid string) bool {
	return PHIDType(phid) == PHIDTypeUser
}

// PHIDSet множество PHID для проверок принадлежности
type PHIDSet map[string]struct{}

func NewPHIDSet(phids ...string) PHIDSet {
	set := make(PHIDSet, len(phids))
	for _, phid := range phids {
		set[phid] = struct{}{}
	}
	return set
}

func (s PHIDSet) Contains(phid string) bool {
	_, ok := s[phid]
	return ok
}

// UniquePHIDs убирает дубли и пустые значения, сохраняя порядок
func UniquePHIDs(phids []string) []string {
	seen := make(map[string]struct{}, len(phids))
	result := make([]string, 0, len(phids))
	for _, phid := range phids {
		if phid == "" {
			continue
		}
		if _, ok := seen[phid]; ok {
			continue
		}
		seen[phid] = struct{}{}
		result = append(result, phid)
	}
	return result
}
