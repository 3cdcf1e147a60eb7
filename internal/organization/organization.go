package organization

import "github.com/frahmantamala/training-management/internal"

// Company is one entry of the fixed company to department mapping.
type Company struct {
	Name        string   `json:"name"`
	Departments []string `json:"departments"`
}

type CompaniesResponse struct {
	Companies []Company `json:"companies"`
}

// DefaultCompanies is the built-in taxonomy, in display order.
func DefaultCompanies() []Company {
	return []Company{
		{Name: "神通", Departments: []string{"一般部門"}},
		{Name: "神資", Departments: []string{
			"070-董事長室", "P00-總經理室", "PA0-財務處", "PC0-稽核室",
			"PG0-資訊服務研發處", "600-數位科技事業群", "700-行政支援中心",
			"C00-應用系統事業群", "G00-創新科技事業群", "K00-智慧交通事業群",
		}},
		{Name: "神耀", Departments: []string{
			"Q0A-董事長室", "Q00-總經理室", "QF0-管理處", "Q01-財會部",
			"QA0-智能科技中心", "QB0-智慧聯安事業群", "QC0-AI創新應用研發中心",
		}},
		{Name: "新達", Departments: []string{
			"ZA0-董事長室", "Z00-總經理室", "Z10-統合通訊處",
			"Z20-智能影音處", "Z30-電力系統處", "Z70-技術支援處",
		}},
		{Name: "肇源", Departments: []string{"一般部門"}},
		{Name: "光通信", Departments: []string{"一般部門"}},
	}
}

func FromConfig(cfg internal.OrganizationConfig) []Company {
	if len(cfg.Companies) == 0 {
		return DefaultCompanies()
	}
	companies := make([]Company, 0, len(cfg.Companies))
	for _, c := range cfg.Companies {
		companies = append(companies, Company{
			Name:        c.Name,
			Departments: append([]string(nil), c.Departments...),
		})
	}
	return companies
}

func (c Company) clone() Company {
	return Company{Name: c.Name, Departments: append([]string(nil), c.Departments...)}
}

func (c Company) hasDepartment(department string) bool {
	for _, d := range c.Departments {
		if d == department {
			return true
		}
	}
	return false
}
