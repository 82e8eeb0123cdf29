// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package categories

// All is the table of arXiv computer science categories the selector may
// choose from.
var All = []Category{
	{Code: "cs.AI", Name: "Artificial Intelligence", Description: "Covers all areas of AI except Vision, Robotics, Machine Learning, Multiagent Systems, and Computation and Language (Natural Language Processing), which have separate subject areas. In particular, includes Expert Systems, Theorem Proving (although this may overlap with Logic in Computer Science), Knowledge Representation, Planning, and Uncertainty in AI."},
	{Code: "cs.AR", Name: "Hardware Architecture", Description: "Covers systems organization and hardware architecture."},
	{Code: "cs.CC", Name: "Computational Complexity", Description: "Covers models of computation, complexity classes, structural complexity, complexity tradeoffs, upper and lower bounds."},
	{Code: "cs.CE", Name: "Computational Engineering, Finance, and Science", Description: "Covers applications of computer science to the mathematical modeling of complex systems in the fields of science, engineering, and finance. Papers here are interdisciplinary and applications-oriented, focusing on techniques and tools that enable challenging computational simulations to be performed, for which the use of supercomputers or distributed computing platforms is often required."},
	{Code: "cs.CL", Name: "Computation and Language", Description: "Covers natural language processing."},
	{Code: "cs.CR", Name: "Cryptography and Security", Description: "Covers all areas of cryptography and security including authentication, public key cryptosystems, proof-carrying code, etc."},
	{Code: "cs.CV", Name: "Computer Vision and Pattern Recognition", Description: "Covers image processing, computer vision, pattern recognition, and scene understanding."},
	{Code: "cs.CY", Name: "Computers and Society", Description: "Covers impact of computers on society, computer ethics, information technology and public policy, legal aspects of computing, computers and education."},
	{Code: "cs.DB", Name: "Databases", Description: "Covers database management, datamining, and data processing."},
	{Code: "cs.DC", Name: "Distributed, Parallel, and Cluster Computing", Description: "Covers fault-tolerance, distributed algorithms, stability, parallel computation, and cluster computing."},
	{Code: "cs.DL", Name: "Digital Libraries", Description: "Covers all aspects of the digital library design and document and text creation. Note that there will be some overlap with Information Retrieval (separate subject area)."},
	{Code: "cs.DM", Name: "Discrete Mathematics", Description: "Covers combinatorics, graph theory, applications of probability."},
	{Code: "cs.DS", Name: "Data Structures and Algorithms", Description: "Covers data structures and analysis of algorithms."},
	{Code: "cs.ET", Name: "Emerging Technologies", Description: "Covers approaches to information processing and bio-chemical analysis based on alternatives to silicon CMOS-based technologies."},
	{Code: "cs.FL", Name: "Formal Languages and Automata Theory", Description: "Covers automata theory, formal language theory, grammars, and combinatorics on words."},
	{Code: "cs.GL", Name: "General Literature", Description: "Covers introductory material, survey material, predictions of future trends, biographies, and miscellaneous computer-science related material."},
	{Code: "cs.GR", Name: "Graphics", Description: "Covers all aspects of computer graphics."},
	{Code: "cs.GT", Name: "Computer Science and Game Theory", Description: "Covers theoretical and applied aspects at the intersection of computer science and game theory, including mechanism design, learning in games, agent modeling, coordination, and applications to electronic commerce."},
	{Code: "cs.HC", Name: "Human-Computer Interaction", Description: "Covers human factors, user interfaces, and collaborative computing."},
	{Code: "cs.IR", Name: "Information Retrieval", Description: "Covers indexing, dictionaries, retrieval, content and analysis."},
	{Code: "cs.IT", Name: "Information Theory", Description: "Covers theoretical and experimental aspects of information theory and coding."},
	{Code: "cs.LG", Name: "Machine Learning", Description: "Papers on all aspects of machine learning research including robustness, explanation, fairness, and methodology. cs.LG is also appropriate for applications of machine learning methods."},
	{Code: "cs.LO", Name: "Logic in Computer Science", Description: "Covers all aspects of logic in computer science, including finite model theory, logics of programs, modal logic, and program verification."},
	{Code: "cs.MA", Name: "Multiagent Systems", Description: "Covers multiagent systems, distributed AI, intelligent agents, coordinated interactions."},
	{Code: "cs.MM", Name: "Multimedia", Description: "Covers all aspects of multimedia computing."},
	{Code: "cs.MS", Name: "Mathematical Software", Description: "Covers all aspects of mathematical software, including algorithms, design, implementation, testing."},
	{Code: "cs.NA", Name: "Numerical Analysis", Description: "cs.NA is an alias for math.NA."},
	{Code: "cs.NE", Name: "Neural and Evolutionary Computing", Description: "Covers neural networks, connectionism, genetic algorithms, artificial life, adaptive behavior."},
	{Code: "cs.NI", Name: "Networking and Internet Architecture", Description: "Covers all aspects of computer communication networks, including network architecture and design, network protocols, and internetwork standards."},
	{Code: "cs.OS", Name: "Operating Systems", Description: "Covers operating systems, file systems, system administration, etc."},
	{Code: "cs.PF", Name: "Performance", Description: "Covers performance measurement and evaluation, queueing, and simulation."},
	{Code: "cs.PL", Name: "Programming Languages", Description: "Covers programming language semantics, language features, programming approaches, and compilers oriented towards programming languages."},
	{Code: "cs.RO", Name: "Robotics", Description: "Covers all aspects of robotics."},
	{Code: "cs.SC", Name: "Symbolic Computation", Description: "Covers computer algebra, symbolic and algebraic computation, and automated theorem proving."},
	{Code: "cs.SD", Name: "Sound", Description: "Covers all aspects of computing with sound, audio analysis/synthesis, and sound signal processing."},
	{Code: "cs.SE", Name: "Software Engineering", Description: "Covers design tools, software metrics, testing and debugging, programming environments, etc."},
	{Code: "cs.SI", Name: "Social and Information Networks", Description: "Covers design, analysis, and modeling of social and information networks and their applications."},
	{Code: "cs.SY", Name: "Systems and Control", Description: "cs.SY is an alias for eess.SY. Includes methods of control system analysis and design using modeling, simulation and optimization."},
}
