// Package catalog holds the fixed set of website packages sold through
// checkout. Prices are integer euro cents.
package catalog

import "strings"

type Package struct {
	ID           string
	Name         string
	Description  string
	Price        int64
	Currency     string
	ProjectType  string
	TimelineDays int
	Technologies []string
	Features     []string
	DeliveryTime string
	Revisions    int
	GuaranteeDay int
}

const (
	ProjectTypeVitrine       = "SITE_VITRINE"
	ProjectTypeProfessionnel = "SITE_PROFESSIONNEL"
	ProjectTypeEcommerce     = "ECOMMERCE"
)

var packages = map[string]Package{
	"essentiel": {
		ID:           "essentiel",
		Name:         "Essentiel",
		Description:  "Site vitrine responsive, optimise pour le reference local",
		Price:        149000,
		Currency:     "EUR",
		ProjectType:  ProjectTypeVitrine,
		TimelineDays: 10,
		Technologies: []string{"Next.js", "TypeScript", "Tailwind CSS"},
		Features:     []string{"Design responsive", "SEO", "Contact"},
		DeliveryTime: "10 jours",
		Revisions:    2,
		GuaranteeDay: 30,
	},
	"professionnel": {
		ID:           "professionnel",
		Name:         "Professionnel",
		Description:  "Site professionnel avec CMS et reservation en ligne",
		Price:        249000,
		Currency:     "EUR",
		ProjectType:  ProjectTypeProfessionnel,
		TimelineDays: 14,
		Technologies: []string{"Next.js", "TypeScript", "Tailwind CSS", "Prisma"},
		Features:     []string{"CMS", "Reservation", "Analytics", "SEO"},
		DeliveryTime: "14 jours",
		Revisions:    3,
		GuaranteeDay: 60,
	},
	"boutique": {
		ID:           "boutique",
		Name:         "Boutique",
		Description:  "Boutique en ligne complete avec paiements et gestion de stocks",
		Price:        499000,
		Currency:     "EUR",
		ProjectType:  ProjectTypeEcommerce,
		TimelineDays: 21,
		Technologies: []string{"Next.js", "TypeScript", "Tailwind CSS", "Prisma"},
		Features:     []string{"E-commerce", "Gestion stocks", "Paiements", "Analytics"},
		DeliveryTime: "21 jours",
		Revisions:    3,
		GuaranteeDay: 90,
	},
}

// Lookup resolves a package by its identifier. Identifiers are matched
// case-insensitively so provider metadata round-trips cleanly.
func Lookup(id string) (Package, bool) {
	pkg, ok := packages[strings.ToLower(strings.TrimSpace(id))]
	return pkg, ok
}

func IDs() []string {
	return []string{"essentiel", "professionnel", "boutique"}
}

// TimelineDays returns the delivery estimate for a package identifier,
// defaulting to the longest tier when the identifier is unknown.
func TimelineDays(id string) int {
	if pkg, ok := Lookup(id); ok {
		return pkg.TimelineDays
	}
	return 21
}
