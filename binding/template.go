package binding

// DefaultTemplate is the built-in cover letter. Address lines that are left
// empty collapse into the surrounding blank line after NormalizeBlankLines.
const DefaultTemplate = `{{date}}
{{employerName}}
{{companyAddressLine1}}
{{companyAddressLine2}}

Subject: Application for the position of {{position}}

Dear Hiring Manager,

I am writing to express my interest in the {{position}} position at {{companyName}}. With a steady record of organising busy workloads, supporting colleagues and keeping day-to-day operations running smoothly, I am confident that I can contribute to your team from the first week.

In my previous roles I handled correspondence, scheduling, record keeping and coordination between departments. I am comfortable with standard office software, learn new systems quickly and take pride in accurate, well-presented work delivered on time.

I would welcome the opportunity to discuss how my experience fits the needs of {{companyName}}. Thank you for your time and consideration; I look forward to hearing from you.

Sincerely,

Your Name
Phone: +000 0000 000000
Email: your.name@example.com
LinkedIn: https://www.linkedin.com/in/your-profile
`
