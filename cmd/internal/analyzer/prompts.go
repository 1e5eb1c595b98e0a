package analyzer

import (
	"fmt"
	"strings"
)

const researchSeparator = "\n\n---\n\n"

const researchSystemPrompt = `You are a research assistant. Search your knowledge for real, factual information about companies. Be specific with numbers when available. If you don't know exact data, say "Unknown" rather than guessing.`

const analysisSystemPrompt = `You are an expert business analyst. Always base your analysis on the provided research data. Be accurate and conservative with estimates. Return valid JSON only.`

const singleShotSystemPrompt = `You are an expert business analyst. Be accurate and conservative with estimates. Return valid JSON only.`

// ResearchQueries returns the fixed research questions for a domain, in the
// order they are asked: traffic, tech stack, revenue, headcount and SEO.
func ResearchQueries(domain, companyName string) []string {
	return []string{
		fmt.Sprintf("%s company traffic monthly visitors SimilarWeb", domain),
		fmt.Sprintf("%s tech stack built with technologies", domain),
		fmt.Sprintf("%s %s revenue funding valuation", domain, companyName),
		fmt.Sprintf("%s %s employees team size LinkedIn", domain, companyName),
		fmt.Sprintf("%s SEO domain authority backlinks", domain),
	}
}

func researchUserPrompt(query string) string {
	return fmt.Sprintf("Find real information about: %s. Provide specific numbers and facts only. No speculation.", query)
}

// BuildResearchBlob joins the answered queries into the text handed to the
// analysis model. answers[i] belongs to queries[i]; an empty answer means the
// query failed and is left out.
func BuildResearchBlob(queries, answers []string) string {
	blocks := make([]string, 0, len(answers))
	for i, answer := range answers {
		if strings.TrimSpace(answer) == "" || i >= len(queries) {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Research on %q:\n%s", queries[i], answer))
	}
	return strings.Join(blocks, researchSeparator)
}

// BuildAnalysisPrompt embeds the research blob and the report schema.
func BuildAnalysisPrompt(domain, research, compareDomain string) string {
	if strings.TrimSpace(research) == "" {
		research = "No research data could be gathered. Rely on your own knowledge and mark every figure as estimated."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert business analyst. I have gathered research data about the company %q.\n\n", domain)
	b.WriteString("RESEARCH DATA:\n")
	b.WriteString(research)
	b.WriteString(`

Based on this research data, provide a comprehensive business analysis. Use the REAL data from the research above whenever available. Only estimate when data is truly unavailable, and clearly mark estimates.

IMPORTANT RULES:
- Use actual numbers from the research when available
- If data is unknown, use realistic industry benchmarks but mark them as "estimated"
- Never fabricate specific numbers - use ranges if uncertain
- Be conservative with estimates

`)
	b.WriteString(reportSchema(domain))
	b.WriteString(comparisonSection(domain, compareDomain))
	return b.String()
}

// BuildSingleShotPrompt asks for the whole report in one go, without any
// gathered research.
func BuildSingleShotPrompt(domain, compareDomain string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the company behind the website %q and provide a comprehensive business analysis.\n\n", domain)
	b.WriteString(`IMPORTANT RULES:
- Use real, publicly known figures when you know them
- If data is unknown, use realistic industry benchmarks but mark them as "estimated"
- Never fabricate specific numbers - use ranges if uncertain

`)
	b.WriteString(reportSchema(domain))
	b.WriteString(comparisonSection(domain, compareDomain))
	return b.String()
}

func reportSchema(domain string) string {
	return fmt.Sprintf(`Provide your analysis in this JSON format:
{
  "company": {
    "name": "Company Name (from research or domain)",
    "domain": "%s",
    "description": "Brief description based on research",
    "industry": "Primary industry",
    "businessModel": "Revenue model",
    "foundedYear": "from research or 'Unknown'",
    "employeeCount": "from research or estimate range"
  },
  "traffic": {
    "monthlyVisitors": number or estimate,
    "pageViews": estimated number,
    "bounceRate": percentage (0-100),
    "avgSessionDuration": seconds,
    "topCountries": ["Country1", "Country2", "Country3"],
    "organicTraffic": percentage,
    "paidTraffic": percentage,
    "growthRate": percentage,
    "dataSource": "research" or "estimated"
  },
  "seo": {
    "domainAuthority": score (0-100),
    "domainAge": years,
    "backlinks": count,
    "organicKeywords": count,
    "topKeywords": ["keyword1", "keyword2", "keyword3"],
    "contentQuality": score (0-100),
    "dataSource": "research" or "estimated"
  },
  "techStack": {
    "frontend": ["from research"],
    "backend": ["from research"],
    "database": ["from research"],
    "hosting": ["from research"],
    "analytics": ["from research"],
    "marketing": ["from research"],
    "dataSource": "research" or "estimated"
  },
  "revenue": {
    "estimatedMRR": monthly amount in USD,
    "estimatedARR": annual amount in USD,
    "revenueModel": "subscription/freemium/etc",
    "pricingTiers": ["tier info from research"],
    "averageTicketSize": estimated,
    "growthRate": percentage,
    "dataSource": "research" or "estimated"
  },
  "social": {
    "twitter": { "followers": count, "engagement": "high/medium/low" },
    "linkedin": { "followers": count, "engagement": "high/medium/low" },
    "facebook": { "followers": count, "engagement": "high/medium/low" },
    "instagram": { "followers": count, "engagement": "high/medium/low" },
    "youtube": { "subscribers": count, "views": count },
    "dataSource": "research" or "estimated"
  },
  "competition": {
    "marketPosition": "Leader/Challenger/Niche",
    "competitiveAdvantage": "main differentiator",
    "mainCompetitors": ["Competitor1", "Competitor2"],
    "marketSize": "TAM estimate",
    "marketShare": "percentage or tier"
  },
  "aiInsights": {
    "strengths": ["strength1", "strength2", "strength3"],
    "weaknesses": ["weakness1", "weakness2"],
    "opportunities": ["opportunity1", "opportunity2"],
    "threats": ["threat1", "threat2"],
    "scalabilityScore": score (0-100),
    "innovationScore": score (0-100),
    "recommendedActions": ["action1", "action2"]
  },
  "lovablePrompt": "A detailed prompt to build a similar business using Lovable, including features, tech stack, and monetization strategy based on the analysis.",
  "dataQuality": {
    "overallConfidence": "high/medium/low",
    "researchBased": percentage of data from research vs estimated
  }
}
`, domain)
}

func comparisonSection(domain, compareDomain string) string {
	if compareDomain == "" {
		return ""
	}
	return fmt.Sprintf(`
Also analyze %[2]s and provide a comparison:
{
  "comparison": {
    "winner": "%[1]s" or "%[2]s",
    "trafficDiff": percentage difference,
    "revenueDiff": percentage difference,
    "keyDifferences": ["difference1", "difference2"],
    "recommendation": "Which is better positioned and why"
  }
}
`, domain, compareDomain)
}
