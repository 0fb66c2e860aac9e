package synthesis

import "fmt"

const questionsSystemPrompt = `You help a group converge on a decision. ` +
	`Given the decision they are trying to make, produce the clarifying questions ` +
	`whose answers would let an analyst recommend a single option. ` +
	`Respond with JSON only.`

const analysisSystemPrompt = `You are the analyst for a group decision session. ` +
	`Given the questions asked and every participant's answers, synthesize a single ` +
	`verdict the group can act on. Be decisive; surface disagreement in the insights ` +
	`rather than hedging the verdict. Respond with JSON only.`

func questionsPrompt(topic string) string {
	return fmt.Sprintf(`The group is deciding: %q

Produce 4 to 6 clarifying questions. Each question gets a category from this set:
Budget, Timeframe, Preference, GroupDynamic, RiskTolerance, Other.

Respond with this exact JSON shape:
{"questions": [{"text": "...", "category": "..."}]}`, topic)
}

func analysisPrompt(sessionContext string) string {
	return fmt.Sprintf(`%s

Respond with this exact JSON shape:
{
  "verdict_title": "short decisive recommendation",
  "verdict_description": "2-3 sentences explaining the recommendation",
  "budget_score": 0-100,
  "time_score": 0-100,
  "group_size_score": 0-100,
  "insights": [{"title": "...", "description": "..."}, {"title": "...", "description": "..."}, {"title": "...", "description": "..."}]
}

The three scores rate how well the recommendation fits the group's budget, its
timeframe, and its size. Provide exactly 3 insights.`, sessionContext)
}
