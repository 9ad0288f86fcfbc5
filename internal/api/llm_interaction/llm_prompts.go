package llmInteraction

import (
	"fmt"
	"strconv"
)

func generateChatPrompt(dbContext, userMessage string) string {
	return fmt.Sprintf(`
You are WiseBot, a friendly travel assistant specializing in Philippine destinations.
Use the following information, especially the visitor statistics, to provide helpful suggestions to the user.
Do not mention the source of your information.

Information:
%s

User: %s
AI:
`, dbContext, userMessage)
}

func generatePlanPrompt(islandNames string, days, people int, budgetPerPerson float64, dbContext string) string {
	return fmt.Sprintf(
		"You are a Philippine travel expert. Create a detailed, day-by-day travel itinerary "+
			"for a trip to: %s. The trip length is exactly %d days, for %d people, "+
			"with a budget of PHP %s per person.\n\n"+
			"Use the following information about islands and places to make the itinerary realistic:\n%s\n"+
			"Include local food, transport, and estimated cost per day per person. "+
			"Present the plan in clear Markdown with day headers: 'Day 1', 'Day 2', etc. "+
			"Do not add extra days beyond the specified trip length.",
		islandNames, days, people, strconv.FormatFloat(budgetPerPerson, 'f', -1, 64), dbContext)
}
