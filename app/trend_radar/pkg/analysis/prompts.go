package analysis

const analystSystemPrompt = `You are a senior economist at ITR Economics. You write clear, practical analysis of the business cycle
for executives. Business cycle phases: A = Recovery, B = Accelerating Growth, C = Slowing Growth, D = Recession.`

const sectorSummaryPrompt = `Write a 3-5 sentence summary of the %s sector for the %s ITR Trends Report.

Series covered: %s
Phase distribution: %s
Dominant trend: %s

Page summaries:
%s

Focus on the current phase of the business cycle and what it means for businesses. Plain prose only.`

const executiveSummaryPrompt = `Write an executive summary (2-4 paragraphs) of the %s ITR Trends Report.

Sector analyses:
%s

Page summaries:
%s

Cover overall economic direction, sector highlights, and the outlook. Plain prose only.`

const themesPrompt = `Identify up to 7 key themes across the %s ITR Trends Report.

Sector analyses:
%s

Chart interpretations:
%s

Answer with a JSON array only. Each element:
{
  "theme_name": "short name",
  "significance_score": 1-10,
  "frequency": number of series or pages where the theme appears,
  "description": "one or two sentences",
  "affected_sectors": ["core", "financial", "construction", "manufacturing"],
  "business_implications": "one sentence"
}`

const recommendationsPrompt = `Based on the %s ITR Trends Report analysis below, give 3-5 actionable recommendations for business leaders.

Executive summary:
%s

Sector trends:
%s

Answer with a JSON array of strings only.`
