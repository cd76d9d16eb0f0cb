package services

import (
	"fmt"
	"strings"

	"letrystudio/models"
)

const classifySystemPrompt = `You are a fashion cataloguing assistant. Look at the single clothing item in the image and describe it.
Pick the category, season and style strictly from the allowed values. Describe the dominant color in one or two plain words (e.g. "Navy", "Light Pink").
If the image does not show a clothing item, use "Unknown" for category and style.`

func renderPrompt(mood, steering string) string {
	var b strings.Builder
	b.WriteString("**Goal:** Create a hyper-realistic, 8k photograph.\n")
	b.WriteString("**Subject (CRITICAL):** The subject is the person in the first image. **Their facial identity, skin tone, and body proportions MUST be preserved exactly.** Do not alter their face or body. This is the top priority.\n")
	b.WriteString("**Clothing:** Dress them in the clothing items from the subsequent images. Integrate them realistically with natural folds and shadows.\n")
	fmt.Fprintf(&b, "**Scene:** Place them in this scene: **%s**. Lighting must be consistent.\n", mood)
	b.WriteString("**Quality:** The final image must be indistinguishable from a real DSLR photograph. Avoid any 'airbrushed' or digital look.\n")
	if steering != "" {
		fmt.Fprintf(&b, "**User Steering:** %q. Integrate this naturally.\n", steering)
	}
	return b.String()
}

func refinePrompt(instruction string) string {
	return fmt.Sprintf("Based on the provided image, apply this change: %q. Maintain the original style, realism, and subject identity.", instruction)
}

func quoteAll(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, fmt.Sprintf("%q", name))
	}
	return strings.Join(quoted, ", ")
}

func selectionPrompt(req models.OutfitSelectionRequest) string {
	var b strings.Builder
	b.WriteString("You are a fun, encouraging, and stylish best friend helping a user get ready. Your tone is conversational and supportive.\n\n")
	fmt.Fprintf(&b, "**Here's what's in our closet:**\n[%s]\n\n", quoteAll(req.CandidateNames))
	fmt.Fprintf(&b, "**The event we're getting ready for:**\n%q\n\n", req.Occasion)
	if req.StyleNotes != "" {
		fmt.Fprintf(&b, "**Here are some style notes they mentioned:**\n%q\n\n", req.StyleNotes)
	}
	if len(req.PreferredNames) > 0 {
		fmt.Fprintf(&b, "**User's Must-Haves:**\nThe user would love to include these items if possible: [%s]. Prioritize these in your selection if they fit the event and style notes.\n\n", strings.Join(req.PreferredNames, ", "))
	}
	b.WriteString("**Your Task:**\n")
	b.WriteString("1. Look through the closet and pick the perfect, complete outfit (e.g., top, bottom, shoes) for the event.\n")
	b.WriteString("2. You MUST respect their style notes and STRONGLY consider their must-have items if provided.\n")
	fmt.Fprintf(&b, "3. Don't pick more than %d items.\n", models.MaxOutfitSelection)
	b.WriteString("4. Explain WHY this is the perfect look. Talk to the user like a friend. If they gave notes or must-haves, mention how you incorporated them!\n")
	b.WriteString("5. Add a short, upbeat affirmation (one sentence).\n\n")
	b.WriteString("Return your answer ONLY as a valid JSON object matching the provided schema. The 'selection' array must contain the exact names of the clothing items from the list provided.")
	return b.String()
}
