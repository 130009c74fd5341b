package service

import (
	"github.com/niklvrr/reviewpulse/internal/domain"
)

// ProjectIndex кеш проектов на один прогон отчета.
// Создается заново при каждом запуске, между прогонами не переиспользуется.
type ProjectIndex struct {
	byPHID    map[string]domain.Project
	customers map[string]domain.Project
	prefix    string
}

func NewProjectIndex(projects []domain.Project, customersParentId int, servicePrefix string) *ProjectIndex {
	if servicePrefix == "" {
		servicePrefix = domain.DefaultServicePrefix
	}

	idx := &ProjectIndex{
		byPHID:    make(map[string]domain.Project, len(projects)),
		customers: make(map[string]domain.Project),
		prefix:    servicePrefix,
	}

	for _, project := range projects {
		idx.byPHID[project.PHID] = project
		if customersParentId > 0 && project.Parent != nil && project.Parent.Id == customersParentId {
			idx.customers[project.PHID] = project
		}
	}

	return idx
}

func (i *ProjectIndex) ProjectByPHID(phid string) (domain.Project, bool) {
	project, ok := i.byPHID[phid]
	return project, ok
}

func (i *ProjectIndex) IsCustomer(project domain.Project) bool {
	_, ok := i.customers[project.PHID]
	return ok
}

func (i *ProjectIndex) ServicePrefix() string {
	return i.prefix
}

// CustomerByName ищет клиента по точному имени
func (i *ProjectIndex) CustomerByName(name string) (domain.Project, bool) {
	for _, project := range i.customers {
		if project.Name == name {
			return project, true
		}
	}
	return domain.Project{}, false
}
