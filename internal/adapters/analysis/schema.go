package analysis

import "go.trai.ch/guard/internal/core/domain"

type jobRequest struct {
	Ecosystem string       `json:"ecosystem"`
	Label     string       `json:"label,omitempty"`
	Project   string       `json:"project,omitempty"`
	Group     string       `json:"group,omitempty"`
	Packages  []jobPackage `json:"packages"`
}

type jobPackage struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Registry string `json:"registry"`
}

type jobResponse struct {
	JobID string `json:"job_id"`
}

type policyResponse struct {
	IsFailure       bool                 `json:"is_failure"`
	IncompleteCount int                  `json:"incomplete_count"`
	JobLink         string               `json:"job_link"`
	Dependencies    []dependencyResponse `json:"dependencies"`
}

type dependencyResponse struct {
	Registry   string              `json:"registry"`
	Name       string              `json:"name"`
	Version    string              `json:"version"`
	Rejections []rejectionResponse `json:"rejections"`
}

type rejectionResponse struct {
	Title      string `json:"title"`
	Suppressed bool   `json:"suppressed"`
	Source     struct {
		Severity string `json:"severity"`
		Domain   string `json:"domain"`
	} `json:"source"`
}

func (p *policyResponse) toDomain() *domain.PolicyEvaluationResult {
	result := &domain.PolicyEvaluationResult{
		IsFailure:       p.IsFailure,
		IncompleteCount: p.IncompleteCount,
		JobLink:         p.JobLink,
		Dependencies:    make([]domain.DependencyFinding, 0, len(p.Dependencies)),
	}

	for _, d := range p.Dependencies {
		finding := domain.DependencyFinding{
			Registry:   d.Registry,
			Name:       d.Name,
			Version:    d.Version,
			Rejections: make([]domain.Rejection, 0, len(d.Rejections)),
		}
		for _, r := range d.Rejections {
			finding.Rejections = append(finding.Rejections, domain.Rejection{
				Title:      r.Title,
				Suppressed: r.Suppressed,
				Severity:   domain.ParseSeverity(r.Source.Severity),
				Domain:     r.Source.Domain,
			})
		}
		result.Dependencies = append(result.Dependencies, finding)
	}

	return result
}
