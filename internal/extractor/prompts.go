package extractor

import "fmt"

const extractionPrompt = `You are an expert agile product owner. Convert the following transcript into well-formed user stories.

Transcript:
%s

Instructions:
Generate between 2 and 5 user stories in JSON format with the following fields:
- title: A brief descriptive title.
- userStory: A detailed user story in the format "As a [user], I want [action] so that [benefit]".
- acceptanceCriteria: An array of acceptance criteria.
- storyPoints: A numeric value (choose from 1, 2, 3, 5, or 8).
- priority: One of "High", "Medium", "Low".
- tags: An array of relevant tags.

Return only valid JSON. For example:
{
  "stories": [
    {
      "title": "User Login Feature",
      "userStory": "As a user, I want to log in so that I can access personalized content.",
      "acceptanceCriteria": ["Valid credentials allow login", "Invalid credentials show error"],
      "storyPoints": 3,
      "priority": "High",
      "tags": ["Authentication", "UI"]
    }
  ]
}`

// BuildPrompt embeds a normalized transcript into the fixed extraction
// prompt. The 2-5 story range is a request to the model, not a postcondition;
// the parser accepts any count, including zero.
func BuildPrompt(normalized string) string {
	return fmt.Sprintf(extractionPrompt, normalized)
}
