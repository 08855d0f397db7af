package tools

import "fmt"

// WebSearch is a placeholder behind the production signature. A real
// deployment replaces the body with a search API call; the surrounding
// pipeline is unaffected.
func WebSearch(query string) string {
	return fmt.Sprintf(`Web search results for: %s

Note: This is a demo environment. In a production system, this would integrate with a real web search API like Google Search API or Bing API to provide current, real-time information.

For MongoDB-related questions, please try asking about:
- MongoDB Atlas features
- Vector search capabilities
- Database performance
- Recent acquisitions or financial information

The knowledge base contains MongoDB earnings reports and technical documentation that can provide detailed answers to these topics.`, query)
}
