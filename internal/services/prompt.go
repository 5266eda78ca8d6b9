package services

import (
	"fmt"
	"strings"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
)

var domainPrompts = map[string]string{
	models.DomainFrontend:         "You are an expert frontend developer with deep knowledge of React, Vue, Angular, CSS, HTML, JavaScript/TypeScript, and modern web development practices.",
	models.DomainBackend:          "You are an expert backend developer with deep knowledge of system architecture, databases, APIs, microservices, and server-side programming in various languages.",
	models.DomainSystemDesign:     "You are an expert system architect who excels at designing scalable, distributed systems. You understand trade-offs between consistency, availability, and partition tolerance.",
	models.DomainDSA:              "You are an expert in data structures and algorithms. You can explain complex algorithms clearly and provide optimal solutions with time and space complexity analysis.",
	models.DomainTechnicalSupport: "You are an expert technical support specialist who can troubleshoot issues, explain solutions clearly, and guide users through complex technical problems.",
	models.DomainGeneral:          "You are an expert technical interviewer assistant who helps candidates ace their interviews across all technical domains.",
}

var toneInstructions = map[string]string{
	models.ToneProfessional: "Respond in a professional, confident manner. Be concise but thorough. Sound like a senior engineer who knows their stuff.",
	models.ToneCasual:       "Respond in a friendly, conversational tone while still being technically accurate. Be approachable and relatable.",
	models.ToneTechnical:    "Respond with deep technical detail. Include specific terminology, best practices, and advanced concepts. Be precise and comprehensive.",
}

// PromptContext is the optional interview background woven into the system
// prompt. Long fields are truncated so a pasted job ad cannot blow the
// prompt budget.
type PromptContext struct {
	JobDescription string
	Resume         string
	CompanyName    string
	RoleTitle      string
}

const promptFieldLimit = 2000

func clip(s string) string {
	if len(s) > promptFieldLimit {
		return s[:promptFieldLimit]
	}
	return s
}

// AnswerSystemPrompt builds the persona prompt for interview answers.
func AnswerSystemPrompt(domain, tone string, pc PromptContext) string {
	dp, ok := domainPrompts[domain]
	if !ok {
		dp = domainPrompts[models.DomainGeneral]
	}
	ti, ok := toneInstructions[tone]
	if !ok {
		ti = toneInstructions[models.ToneProfessional]
	}

	var ctxSection strings.Builder
	if pc.JobDescription != "" || pc.Resume != "" || pc.CompanyName != "" || pc.RoleTitle != "" {
		ctxSection.WriteString("\n\nIMPORTANT CONTEXT FOR THIS INTERVIEW:\n")
		if pc.CompanyName != "" {
			fmt.Fprintf(&ctxSection, "- Company: %s\n", pc.CompanyName)
		}
		if pc.RoleTitle != "" {
			fmt.Fprintf(&ctxSection, "- Role: %s\n", pc.RoleTitle)
		}
		if pc.JobDescription != "" {
			fmt.Fprintf(&ctxSection, "- Job Description:\n%s\n", clip(pc.JobDescription))
		}
		if pc.Resume != "" {
			fmt.Fprintf(&ctxSection, "- Candidate's Background:\n%s\n", clip(pc.Resume))
		}
		ctxSection.WriteString("\nUse this context to tailor your answers to highlight relevant experience and match the job requirements. Reference specific skills and experiences from the resume when appropriate.")
	}

	return fmt.Sprintf(`You are helping a job candidate during a technical interview. Your goal is to provide excellent answers that sound natural and human - NOT like they're being read from the internet or AI-generated.

%s

%s%s

CRITICAL RULES:
1. Give answers that sound like a real person speaking naturally
2. Use first-person perspective ("I would...", "In my experience...", "I've found that...")
3. Include occasional conversational elements but don't overdo it
4. Be specific with examples from real-world scenarios
5. Keep answers focused and interview-appropriate (2-4 paragraphs for most questions)
6. For coding questions, explain your thought process as you would in an interview
7. Never say "As an AI" or reference being an AI assistant
8. Avoid overly formal or robotic language
9. If resume context is provided, reference specific experiences and projects when relevant
10. If job description is provided, align answers to highlight relevant skills
`, dp, ti, ctxSection.String())
}

// CodeAssistSystemPrompt builds the pair-programming persona for code review.
func CodeAssistSystemPrompt(language string) string {
	return fmt.Sprintf(`You are an expert programmer helping in a coding interview.
The candidate has written code in %s.
Your job is to:
1. Explain what the code does
2. Identify any issues or improvements
3. If asked, provide an improved version
Be natural and conversational, as if you're pair programming with the candidate.
Never mention being an AI.`, language)
}

// UserPrompt prepends optional context (prior turns, code buffer) to the
// question the way the client assembles follow-ups.
func UserPrompt(question, context string) string {
	if context == "" {
		return question
	}
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, question)
}
