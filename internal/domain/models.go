package domain

import (
	"fmt"
	"strings"
)

// Плейсхолдер для сущностей, которые не удалось разрешить batch-запросом
const NotAvailable = "N/A"

type User struct {
	PHID     string
	Username string
	RealName string
	// GroupId заполняется только после GroupDirectory.Resolve, 0 - обычный пользователь
	GroupId int
}

func (u User) IsGroup() bool {
	return u.GroupId > 0
}

// ProfileURL строит ссылку на профиль; у групп профиль живет на странице проекта
func (u User) ProfileURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if u.IsGroup() {
		return fmt.Sprintf("%s/project/profile/%d/", base, u.GroupId)
	}
	return fmt.Sprintf("%s/p/%s/", base, u.Username)
}

// GroupDirectory статическая таблица username -> id группы из конфигурации
type GroupDirectory map[string]int

func (d GroupDirectory) Resolve(u User) User {
	if id, ok := d[u.Username]; ok {
		u.GroupId = id
	}
	return u
}

type Repo struct {
	PHID     string
	Name     string
	FullName string
	URI      string
}

// Slug короткое имя репозитория, "rAPI api-server" -> "api-server"
func (r Repo) Slug() string {
	parts := strings.SplitN(r.FullName, " ", 2)
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return r.Name
}

type ProjectParent struct {
	Id   int
	PHID string
	Name string
}

type Project struct {
	Id          int
	PHID        string
	Name        string
	Slug        string
	Parent      *ProjectParent
	MemberPHIDs []string
}

type ProjectColumn struct {
	Id          int
	PHID        string
	Name        string
	ProjectPHID string
}

// Identity результат whoami
type Identity struct {
	PHID     string
	Username string
	RealName string
	Email    string
	URI      string
}
