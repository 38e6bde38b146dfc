package stages

// Prompt templates for the LLM-backed stages. Temperature is pinned to 0
// everywhere so the pipeline behaves as deterministically as the backend
// allows.

const rewriterSystem = "You are a question re-writer that converts an input question to a better " +
	"version that is optimized for retrieval. Look at the input and try to reason about the " +
	"underlying semantic intent / meaning."

const rewriterPrompt = "Here is the initial question: \n\n %s \n Formulate an improved question."

const classifierSystem = "You are a classifier that determines if a question and retrieved " +
	"documents are on-topic."

const classifierPrompt = "Question: %s\n\nDocuments: %s\n\nIs this on-topic? Respond with " +
	"'on-topic' or 'off-topic'."

const rerankerPrompt = "Given the question and the numbered documents, rank the documents in " +
	"order of preference based on relevance to the question. Respond with one document number " +
	"per line, most relevant first. Omit documents that are not useful.\n\n" +
	"Question: %s\nDocuments:\n%s"

const answerPrompt = "Answer the question based only on the following context:\n%s\n\nQuestion: %s"

// InsufficientContextAnswer is produced when generation runs with no
// candidate documents. Required behavior: never hallucinate from no
// evidence.
const InsufficientContextAnswer = "I don't have enough context in the indexed documents to answer that question."
