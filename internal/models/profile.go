package models

// ResumeProfile is the structured form of a candidate resume, produced by the
// resume-parsing collaborator. Fields mirror what the question planner consumes.
type ResumeProfile struct {
	Name           string       `json:"name,omitempty"`
	Skills         []string     `json:"skills,omitempty"`
	Certifications []string     `json:"certifications,omitempty"`
	Projects       []Project    `json:"projects,omitempty"`
	Experience     []Experience `json:"experience,omitempty"`
	Education      []Education  `json:"education,omitempty"`
	SoftSkills     []string     `json:"soft_skills,omitempty"`
}

// Project is a single project entry on a resume.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	KeyFeatures  []string `json:"key_features,omitempty"`
}

// Experience is a single employment entry on a resume.
type Experience struct {
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	Duration     string   `json:"duration,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Education is a single education entry on a resume.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution,omitempty"`
	Year        string `json:"year,omitempty"`
}

// IsEmpty reports whether the profile carries no usable content.
func (p ResumeProfile) IsEmpty() bool {
	return p.Name == "" &&
		len(p.Skills) == 0 &&
		len(p.Certifications) == 0 &&
		len(p.Projects) == 0 &&
		len(p.Experience) == 0 &&
		len(p.Education) == 0 &&
		len(p.SoftSkills) == 0
}

// JobProfile is the structured form of a job description, produced by the
// job-description analyzer collaborator.
type JobProfile struct {
	JobTitle            string   `json:"job_title,omitempty"`
	RequiredSkills      []string `json:"required_skills,omitempty"`
	PreferredSkills     []string `json:"preferred_skills,omitempty"`
	ExperienceLevel     string   `json:"experience_level,omitempty"`
	KeyResponsibilities []string `json:"key_responsibilities,omitempty"`
	SoftSkillsNeeded    []string `json:"soft_skills_needed,omitempty"`
	InterviewFocusAreas []string `json:"interview_focus_areas,omitempty"`
}

// IsEmpty reports whether the profile carries no usable content.
func (p JobProfile) IsEmpty() bool {
	return p.JobTitle == "" &&
		len(p.RequiredSkills) == 0 &&
		len(p.PreferredSkills) == 0 &&
		len(p.KeyResponsibilities) == 0 &&
		len(p.SoftSkillsNeeded) == 0 &&
		len(p.InterviewFocusAreas) == 0
}
