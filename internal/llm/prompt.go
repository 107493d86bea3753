package llm

import (
	"strings"
	"text/template"
)

const (
	groundedSystemPrompt   = "You are a corporate intelligence analyst. Provide comprehensive, factual analysis with citations."
	knowledgeSystemPrompt  = "You are a corporate intelligence analyst. Provide comprehensive, factual analysis based on your knowledge."
	complianceCompetitors  = "Theta Lake, Smarsh, Global Relay, NICE, Verint, Arctera, Veritas, Proofpoint, Shield, Behavox, Digital Reasoning, Mimecast, ZL Technologies"
	regulatorExamples      = "SEC, FINRA, FCA, CFTC, ESMA, OCC, FDIC, Federal Reserve, PRA, MAS, ASIC, BaFin, AMF"
	regulatoryEventSources = "SEC.gov, FINRA.org, DOJ.gov, FCA.org.uk, and major financial news sources (Reuters, Bloomberg, WSJ)"
)

var analysisTemplate = template.Must(template.New("analysis").Parse(`You are a corporate intelligence analyst. Analyze "{{.Company}}" and provide comprehensive information. Search for the most current information available.

Return your analysis in the following EXACT format with tags:

[SUMMARY]
Write exactly 4 sentences covering the company's core business, market position, and recent developments.
[/SUMMARY]

[SENTIMENT]
One word only: BULLISH, BEARISH, MIXED, or NEUTRAL, based on recent news and market perception.
[/SENTIMENT]

[QUICK_FACTS]
Employee Count: [number or estimate]
Headquarters: [location]
Industry: [primary industry]
Founded: [year]
CEO: [name]
Market Cap: [value if public, or "Private"]
[/QUICK_FACTS]

[INVESTOR_DOCS]
Latest 10-K | [URL if found] | [Key highlights]
Latest Investor Presentation | [URL if found] | [Key highlights]
[/INVESTOR_DOCS]

[KEY_PRIORITIES]
List 5 strategic priorities taken from executive communications:
1. [Priority]
2. [Priority]
3. [Priority]
4. [Priority]
5. [Priority]
[/KEY_PRIORITIES]

[GROWTH_INITIATIVES]
List 5 growth initiatives:
1. [Initiative]
2. [Initiative]
3. [Initiative]
4. [Initiative]
5. [Initiative]
[/GROWTH_INITIATIVES]

[TECH_NEWS]
Provide 10 AI or technology news items about this company from the past month, one per line:
Title | URL | Brief summary
[/TECH_NEWS]

[CASE_STUDIES]
Find 5 technology case studies published by OTHER technology vendors (AWS, Microsoft, Google, Salesforce, ServiceNow, Snowflake, etc.) that feature {{.Company}} as a customer or partner.
Only include case studies hosted on the vendor's site, never on {{.Company}}'s own website.
Format: Vendor: Title | URL | Summary
[/CASE_STUDIES]

[COMPETITOR_MENTIONS]
Find technology-related mentions of "{{.Company}}" involving these compliance and archiving vendors: {{.Competitors}}.

Include technology partnerships, product integrations, customer case studies, competitive comparisons, and product or platform announcements.

Exclude financial advisory roles, board seats, conference co-authorship, investment banking, generic industry reports, and regulatory filings that merely list the company.

Only use REAL URLs from the vendor's website, with a 1-2 sentence summary of the technology relevance.
Format: Competitor Name | Mention Type (customer/partner/comparison/case_study/press_release/integration) | Title | Full URL | Date (YYYY-MM) | Technology summary
[/COMPETITOR_MENTIONS]

[LEADERSHIP_CHANGES]
List leadership changes, executive appointments, promotions, or departures from the past 12 months:
Name | New Role | Change Type (appointed/promoted/departed/expanded_role) | Date | Previous Role (if applicable) | Source URL
[/LEADERSHIP_CHANGES]

[MA_ACTIVITY]
List ONLY verified, publicly announced mergers, acquisitions, and divestitures from the past 5 years.
Only include deals with REAL company names confirmed by news sources. Never invent placeholder names such as "Fintech Startup XYZ" or "Regional Bank ABC". Leave this section empty if no activity can be verified.
Format: Year | Type (Acquisition/Merger/Divestiture) | Target or Partner (verified company name) | Deal Value (if known) | Strategic Rationale
[/MA_ACTIVITY]

[REGULATORY_LANDSCAPE]
Using the company's Legal, Compliance, and About pages plus Wikipedia and other public sources, list the regulatory bodies that oversee or interact with "{{.Company}}", such as {{.Regulators}}.
Format: Regulatory Body | Brief context (e.g. "Primary securities regulator", "Registered broker-dealer") | Source URL (if available)
[/REGULATORY_LANDSCAPE]

[REGULATORY_EVENTS]
Search {{.EventSources}} for enforcement actions, fines, penalties, settlements, consent orders, or investigations involving "{{.Company}}" since 2020.

Look for:
- SEC enforcement actions and litigation releases
- FINRA disciplinary actions and fines
- DOJ settlements and criminal charges
- State attorney general actions
- International regulatory penalties (FCA, ESMA, etc.)

Large financial institutions usually have several actions, so search thoroughly. Only include REAL events with verifiable sources.
Format: Date (YYYY-MM or YYYY) | Regulatory Body | Event Type (fine/penalty/settlement/enforcement/investigation/consent/order) | Amount (e.g. $15 million) | Brief description of the violation | News or official source URL
[/REGULATORY_EVENTS]

[SOURCES]
List every source URL used, one per line.
[/SOURCES]`))

// AnalysisPrompt renders the tagged-report prompt for company.
func AnalysisPrompt(company string) string {
	var b strings.Builder
	// The template and its data are static; Execute cannot fail.
	_ = analysisTemplate.Execute(&b, struct {
		Company      string
		Competitors  string
		Regulators   string
		EventSources string
	}{
		Company:      strings.TrimSpace(company),
		Competitors:  complianceCompetitors,
		Regulators:   regulatorExamples,
		EventSources: regulatoryEventSources,
	})
	return b.String()
}

// systemPrompt returns the system instruction for a provider.
func systemPrompt(grounded bool) string {
	if grounded {
		return groundedSystemPrompt
	}
	return knowledgeSystemPrompt
}
