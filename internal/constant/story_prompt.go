package constant

const (
	StoryIdeasSystemInstructionV1 = `You are a creative story idea generator for journalists and writers. Your goal is to provide 3 to 5 distinct and compelling story ideas based on the user's prompts. Respond ONLY with a valid JSON array of objects that matches the provided schema. Each object must contain a 'title' and a 'summary'.`

	StoryIdeaTitleDescription   = "A creative, compelling headline or title for the story idea."
	StoryIdeaSummaryDescription = "A brief, one-paragraph summary of the potential article or story, outlining the main angle or narrative."

	TextInstructionTemplate  = "Generate story ideas based on the following topics: %s."
	EmojiInstructionTemplate = "Generate story ideas inspired by this sequence of emojis: %s."
	ImageInstruction         = "Generate story ideas inspired by the following image(s). Analyze the content, mood, and potential narratives within the image(s)."

	// ResearchPlanPromptV1 takes the idea title and summary, in that order.
	ResearchPlanPromptV1 = `
For the following story idea:
Title: "%s"
Summary: "%s"

Generate a comprehensive research work plan for a journalist. The plan should be well-structured, between 150 and 250 words, and include the following sections, formatted in Markdown:

### Story Outline
A potential narrative structure or list of key points to cover.

### Potential Sources
- **Primary Sources:** Suggest types of people to interview (e.g., experts, officials, affected individuals).
- **Secondary Sources:** Suggest types of documents, reports, or data to look for.

### Key Questions to Answer
List critical questions the journalist should seek to answer in their reporting.
`

	IdeasFailedMessage = "Failed to generate story ideas from the AI. Please check your prompts or try again later."
	PlanFailedMessage  = "Failed to generate research plan. Please try again."
)
