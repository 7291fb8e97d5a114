package models

type Classification int

const (
	Unclassified Classification = iota
	ClassifiedCatalog
	ClassifiedOrder
)

func (c Classification) String() string {
	switch c {
	case ClassifiedCatalog:
		return "catalog"
	case ClassifiedOrder:
		return "order"
	}
	return "unclassified"
}

// Domain reports the domain for a classified query.
func (c Classification) Domain() (Domain, bool) {
	switch c {
	case ClassifiedCatalog:
		return DomainCatalog, true
	case ClassifiedOrder:
		return DomainOrder, true
	}
	return "", false
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}
