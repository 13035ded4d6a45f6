// ABOUTME: Prompt construction for the language-control cascade
// ABOUTME: One validate-or-translate prompt plus three translation prompts of escalating strictness

package langcontrol

import "fmt"

// primaryPrompt asks the model to return the reply unchanged if it is
// already in the target language, or translated if not.
func primaryPrompt(userMessage, reply string, target Language) string {
	return fmt.Sprintf(`You are a %[1]s language validator. Ensure the RESPONSE TO CHECK is returned in %[1]s.

USER MESSAGE: %[2]s
RESPONSE TO CHECK: %[3]s

INSTRUCTIONS:
- If RESPONSE TO CHECK is already in %[1]s: return it EXACTLY as provided.
- If RESPONSE TO CHECK is in another language: translate it to %[1]s.
- Preserve ALL formatting, markdown, emojis, placeholders, variables, and quoted text.
- Return ONLY the final response text.
- NO explanations, NO comments, NO meta-text.
- Do NOT add phrases like "Here is..." or "(The corrected...)".
- Do NOT explain what you did.
- Do NOT shorten or summarize; keep the full response intact.

OUTPUT (response only):`, target.Name, userMessage, reply)
}

// retryPrompt builds the translation prompt for one cascade attempt.
// Attempt 1 is a plain instruction, attempt 2 delimits the text and forbids
// anything else, attempt 3 adds worked examples in the target language.
func retryPrompt(attempt int, text string, target Language) string {
	switch attempt {
	case 1:
		return fmt.Sprintf(`Translate the following text to %s. Preserve all formatting and placeholders. Return only the translation.

%s`, target.Name, text)
	case 2:
		return fmt.Sprintf(`Translate the text between the markers to %[1]s.
Return ONLY the translated text. Do not repeat the markers. Do not add anything before or after it.

<<<BEGIN
%[2]s
END>>>`, target.Name, text)
	default:
		return fmt.Sprintf(`Translate the text to %[1]s, exactly as shown in the examples.

%[2]s

Text: %[3]s
Translation:`, target.Name, workedExamples(target), text)
	}
}

// workedExamples returns translation examples into the target language for
// the strictest retry prompt.
func workedExamples(target Language) string {
	switch target.Code {
	case "en":
		return `Text: Hola, ¿en qué puedo ayudarte hoy?
Translation: Hello, how can I help you today?
Text: Claro, puedo redactar ese correo para el cliente.
Translation: Sure, I can draft that email for the client.`
	case "pt":
		return `Text: Hello, how can I help you today?
Translation: Olá, como posso ajudar você hoje?
Text: Here are your options.
Translation: Aqui estão as suas opções.`
	case "fr":
		return `Text: Hello, how can I help you today?
Translation: Bonjour, comment puis-je vous aider aujourd'hui ?
Text: Here are your options.
Translation: Voici vos options.`
	default:
		return `Text: Hello, how can I help you today?
Translation: Hola, ¿en qué puedo ayudarte hoy?
Text: Here are your options.
Translation: Aquí tienes tus opciones.`
	}
}
