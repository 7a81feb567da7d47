package agent

import (
	"fmt"
	"strings"
)

// NoKnowledgeAnswer is returned without calling the model when retrieval
// finds nothing: the system not knowing is distinct from it being broken.
const NoKnowledgeAnswer = "I don't have enough information in the knowledge base to answer this question. Please upload relevant documents first."

// NotRelatedAnswer is the fixed reply the model is instructed to give for
// out-of-domain questions.
func NotRelatedAnswer(company string) string {
	return fmt.Sprintf("This question is not related to %s. Please ask questions about our company, services, products, or business operations.", company)
}

// NoInfoAnswer is the fixed reply for in-domain questions the retrieved
// context cannot answer.
func NoInfoAnswer(company string) string {
	return fmt.Sprintf("I don't have specific information about this in the available documents. Please contact %s directly for more details.", company)
}

// BuildPrompt assembles the single generation prompt: numbered context,
// the verbatim question, and the behavioral instructions. In-domain
// classification happens inside generation, not retrieval, so the
// instructions carry both fixed fallback replies.
func BuildPrompt(company, contextBlock, question string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a helpful AI assistant for %s. Answer the user's question based on the following context from the company documents.\n\n", company)
	fmt.Fprintf(&sb, "Context:\n%s\n\n", contextBlock)
	fmt.Fprintf(&sb, "Question: %s\n\n", question)
	sb.WriteString("Instructions:\n")
	fmt.Fprintf(&sb, "- First, determine if the question is related to %s, the company's services, products, or business\n", company)
	fmt.Fprintf(&sb, "- If the question is NOT related to %s (e.g., general knowledge questions, unrelated topics), respond with: %q\n", company, NotRelatedAnswer(company))
	fmt.Fprintf(&sb, "- If the question IS related to %s but the context doesn't have the answer, respond with: %q\n", company, NoInfoAnswer(company))
	sb.WriteString(`- For valid company-related questions with available information:
  - Provide a direct, clear and concise answer based on the context provided
  - Format your answer using bullet points (using - or *) when listing multiple items or facts
  - For single fact answers, you can respond in a sentence without bullets
  - Do NOT mention sources, source numbers, or where the information came from
  - Do NOT use phrases like "according to", "mentioned in", "as stated in", "this document", or similar references
  - Answer naturally as if you are stating a fact
- Maintain a professional and helpful tone

Answer:`)

	return sb.String()
}
