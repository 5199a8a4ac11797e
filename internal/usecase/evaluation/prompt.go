package evaluation

import "fmt"

func qaPrompt(source, text string) string {
	return fmt.Sprintf(`You are a teacher preparing an exam.
Given the following text chunk from a document (%s), write one specific factoid question and its correct answer.
The question must be answerable ONLY from the information in the text.

Text:
%s

Output format:
Question: [your question]
Answer: [your answer]
`, source, text)
}

func judgePrompt(question, trueAnswer, generated string) string {
	return fmt.Sprintf(`You are a fair judge evaluating a retrieval-augmented QA system.
Compare the Generated Answer to the True Answer and score the Generated Answer
from 1 to 5 for accuracy and completeness.

Question: %s
True Answer: %s
Generated Answer: %s

Output format:
Score: [1-5]
Reasoning: [explanation]
`, question, trueAnswer, generated)
}
