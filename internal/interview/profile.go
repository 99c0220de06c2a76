package interview

// Skills groups the categorized technical skills extracted from a resume.
type Skills struct {
	Languages      []string `json:"languages" mapstructure:"languages"`
	Frameworks     []string `json:"frameworks" mapstructure:"frameworks"`
	Tools          []string `json:"tools" mapstructure:"tools"`
	Databases      []string `json:"databases" mapstructure:"databases"`
	CloudPlatforms []string `json:"cloud_platforms" mapstructure:"cloud_platforms"`
}

// WorkExperience is a single employment entry.
type WorkExperience struct {
	Company     string `json:"company" mapstructure:"company"`
	Position    string `json:"position" mapstructure:"position"`
	Duration    string `json:"duration" mapstructure:"duration"`
	Description string `json:"description" mapstructure:"description"`
}

// Education is a single education entry.
type Education struct {
	Institution    string `json:"institution" mapstructure:"institution"`
	Degree         string `json:"degree" mapstructure:"degree"`
	Field          string `json:"field,omitempty" mapstructure:"field"`
	GraduationYear string `json:"graduation_year,omitempty" mapstructure:"graduation_year"`
}

// Project is a single project entry from a resume.
type Project struct {
	Name         string   `json:"name" mapstructure:"name"`
	Description  string   `json:"description" mapstructure:"description"`
	Technologies []string `json:"technologies" mapstructure:"technologies"`
}

// CandidateProfile is the structured candidate record produced by the
// extraction collaborator. It is immutable once a session is created.
type CandidateProfile struct {
	Name              string           `json:"name" mapstructure:"name"`
	Email             string           `json:"email,omitempty" mapstructure:"email"`
	Phone             string           `json:"phone,omitempty" mapstructure:"phone"`
	Summary           string           `json:"summary,omitempty" mapstructure:"summary"`
	Skills            Skills           `json:"skills" mapstructure:"skills"`
	Experience        []WorkExperience `json:"experience" mapstructure:"experience"`
	Education         []Education      `json:"education" mapstructure:"education"`
	Projects          []Project        `json:"projects" mapstructure:"projects"`
	YearsOfExperience *int             `json:"years_of_experience,omitempty" mapstructure:"years_of_experience"`
}

// AllSkills flattens the categorized skill lists in catalog order.
func (p *CandidateProfile) AllSkills() []string {
	var skills []string
	skills = append(skills, p.Skills.Languages...)
	skills = append(skills, p.Skills.Frameworks...)
	skills = append(skills, p.Skills.Tools...)
	skills = append(skills, p.Skills.Databases...)
	skills = append(skills, p.Skills.CloudPlatforms...)
	return skills
}
