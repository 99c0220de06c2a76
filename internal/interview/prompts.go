package interview

import (
	"fmt"
	"strconv"
	"strings"

	_ "embed"
)

//go:embed system_prompt.md
var systemPromptTemplate string

//go:embed opening.md
var openingTemplate string

const (
	// jobDescriptionPromptLimit bounds how much of the job description is
	// embedded in the system instruction.
	jobDescriptionPromptLimit = 1000
	// topSkillCount is how many skills the opening message calls out.
	topSkillCount = 5
)

func buildSystemPrompt(catalog *Catalog, profile CandidateProfile, jobDescription string, phase int) string {
	experience := "Not specified"
	if profile.YearsOfExperience != nil {
		experience = strconv.Itoa(*profile.YearsOfExperience)
	}

	prompt := strings.ReplaceAll(systemPromptTemplate, "{{CANDIDATE_NAME}}", profile.Name)
	prompt = strings.ReplaceAll(prompt, "{{EXPERIENCE_YEARS}}", experience)
	prompt = strings.ReplaceAll(prompt, "{{SKILLS}}", strings.Join(profile.AllSkills(), ", "))
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", truncate(jobDescription, jobDescriptionPromptLimit))
	prompt = strings.ReplaceAll(prompt, "{{PHASE_OUTLINE}}", phaseOutline(catalog))
	prompt = strings.ReplaceAll(prompt, "{{PHASE_NUMBER}}", strconv.Itoa(phase))

	return prompt
}

func buildOpeningSeed(profile CandidateProfile) string {
	skills := profile.AllSkills()
	if len(skills) > topSkillCount {
		skills = skills[:topSkillCount]
	}

	seed := strings.ReplaceAll(openingTemplate, "{{CANDIDATE_NAME}}", profile.Name)
	return strings.ReplaceAll(seed, "{{TOP_SKILLS}}", strings.Join(skills, ", "))
}

func phaseOutline(catalog *Catalog) string {
	lines := make([]string, 0, catalog.Len())
	for _, phase := range catalog.Phases() {
		lines = append(lines, fmt.Sprintf("- Phase %d: %s (%s)", phase.Number, phase.Name, phase.Description))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
