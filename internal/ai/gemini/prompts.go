package gemini

const resumePromptTemplate = `Analyze this resume and extract structured information as JSON:

%s

Return ONLY a JSON object with this exact structure:
{
    "name": "candidate name",
    "skills": ["technical skill 1", "technical skill 2"],
    "certifications": ["certification 1"],
    "projects": [
        {
            "name": "project name",
            "description": "brief description",
            "technologies": ["tech1", "tech2"],
            "key_features": ["feature1", "feature2"]
        }
    ],
    "experience": [
        {
            "company": "company name",
            "role": "job title",
            "duration": "time period",
            "achievements": ["achievement1"]
        }
    ],
    "education": [
        {
            "degree": "degree name",
            "institution": "school name",
            "year": "graduation year"
        }
    ],
    "soft_skills": ["leadership", "teamwork"]
}`

const jobPromptTemplate = `Analyze this job description and extract key requirements as JSON:

%s

Return ONLY a JSON object:
{
    "job_title": "job title",
    "required_skills": ["skill1", "skill2"],
    "preferred_skills": ["pref1", "pref2"],
    "experience_level": "junior/mid/senior",
    "key_responsibilities": ["responsibility1", "responsibility2"],
    "soft_skills_needed": ["teamwork", "communication"],
    "interview_focus_areas": ["area1", "area2"]
}`

const questionPromptTemplate = `You are a professional interviewer for the role "%s".
Compose exactly ONE interview question for the candidate, focused on the topic "%s" (%s).
The question must be answerable out loud in one to two minutes and must not repeat the topic name more than once.
Candidate background: %s.
Return ONLY the question text, no numbering, no commentary.`

const transcribeInstruction = `Please transcribe the audio exactly as spoken. Only provide the transcription text, nothing else.`

const speechInstructionPrefix = `Please read this interview question in a professional, clear interviewer voice: `
