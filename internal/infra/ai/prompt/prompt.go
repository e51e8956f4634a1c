package prompt

import "fmt"

const systemPrompt = "You are a helpful cybersecurity assistant. Keep answers short, clear, and well-formatted."

// GetSystemPrompt is the fixed system instruction sent with every completion.
func GetSystemPrompt() string {
	return systemPrompt
}

func Question(question string) string {
	return fmt.Sprintf("You are a helpful cybersecurity assistant. Answer this question clearly and concisely:\n\n%s", question)
}

func URL(url string) string {
	return fmt.Sprintf("Analyze this URL for phishing, spoofing, or malicious intent. Give a short verdict and 3 safe actions:\n\n%s", url)
}

func SMS(message string) string {
	return fmt.Sprintf("Analyze this SMS for phishing/scam risk. Provide risk level and 3 safety steps:\n\n%s", message)
}

func Email(subject, body string) string {
	return fmt.Sprintf("Analyze this email for phishing or scam risk.\n\nSubject: %s\nBody: %s", subject, body)
}

func File(filename, sha256 string) string {
	return fmt.Sprintf("Analyze file named %s with SHA256 %s for suspicious patterns. Give a risk level and 3 actions.", filename, sha256)
}
